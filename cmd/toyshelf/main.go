package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"toyshelf/internal/config"
	"toyshelf/internal/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main 程序入口，字段可在测试中替换
type Main struct {
	// OpenBrowser 打开浏览器
	OpenBrowser func(url string) error
}

// NewMain 返回默认 Main
func NewMain() *Main {
	return &Main{
		OpenBrowser: util.OpenBrowserWithFallback,
	}
}

// Run 解析命令行并执行子命令
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:         ctx,
		Stdout:      stdout,
		Stderr:      stderr,
		OpenBrowser: m.OpenBrowser,
	}

	cli := &CLI{}
	helped := false
	parser, err := kong.New(cli,
		kong.Name("toyshelf"),
		kong.Description("玩具資料瀏覽器：讀取 Excel 清單並提供圖片搜尋連結"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { helped = true }), // 不退出进程，只记录 help 已输出
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) > 0 {
		switch args[0] {
		case "help", "--help", "-h":
			_, _ = parser.Parse([]string{"--help"})
			return nil
		}
	}

	kongCtx, err := parser.Parse(args)
	if helped {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, info, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	deps.Config = cfg
	deps.ConfigInfo = info

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return kongCtx.Run(deps)
}
