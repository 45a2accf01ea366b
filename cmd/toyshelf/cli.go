package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"toyshelf/internal/catalog"
	"toyshelf/internal/config"
	"toyshelf/internal/search"
	"toyshelf/internal/store"
)

// Dependencies 子命令共享的依赖
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Config      *config.AppConfig
	ConfigInfo  config.LoadInfo
	Logger      *slog.Logger
	OpenBrowser func(url string) error
}

// CLI 命令行结构
type CLI struct {
	Config  string `short:"c" help:"Path to config.toml (default: ./config.toml, then next to the executable)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Start the web server and open the browser (default)"`
	Check   CheckCmd   `cmd:"" help:"Check required files before starting"`
	Refresh RefreshCmd `cmd:"" help:"Clear the cache and re-read the workbook"`
	Search  SearchCmd  `cmd:"" help:"Print the image search URL for a product name"`
	History HistoryCmd `cmd:"" help:"Show recent catalog loads"`
	Init    InitCmd    `cmd:"" help:"Write a default config.toml"`
}

func (d *Dependencies) newLoader() *catalog.Loader {
	return catalog.NewLoader(catalog.Options{
		WorkbookPath: d.Config.Data.Workbook,
		CachePath:    d.Config.Data.CacheFile,
		Logger:       d.Logger,
	})
}

func (d *Dependencies) newBuilder() (*search.Builder, error) {
	return search.NewBuilder(d.Config.Search.Endpoint, d.Config.Search.Terms, nil)
}

// openHistory 打开加载历史数据库；未配置时返回 nil
func (d *Dependencies) openHistory() (*store.Store, error) {
	if d.Config.Data.HistoryDB == "" {
		return nil, nil
	}
	st, err := store.New(d.Config.Data.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %q: %w", d.Config.Data.HistoryDB, err)
	}
	return st, nil
}
