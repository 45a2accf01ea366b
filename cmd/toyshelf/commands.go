package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"toyshelf/internal/catalog"
	"toyshelf/internal/config"
	"toyshelf/internal/launcher"
)

// CheckCmd 启动前检查
type CheckCmd struct{}

// Run 执行 check 命令
func (c *CheckCmd) Run(deps *Dependencies) error {
	report := launcher.Preflight(deps.Config)
	printReport(deps, report)
	if !report.OK() {
		return errors.New("check failed")
	}
	fmt.Fprintln(deps.Stdout, "所有检查通过")
	return nil
}

// RefreshCmd 清除缓存并重新读取工作簿
type RefreshCmd struct{}

// Run 执行 refresh 命令
func (c *RefreshCmd) Run(deps *Dependencies) error {
	history, err := deps.openHistory()
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
	}

	res := deps.newLoader().Refresh()
	if history != nil {
		if _, err := history.InsertLoadLog(res.Log(true)); err != nil {
			deps.Logger.Error("failed to record load", "run_id", res.RunID, "err", err)
		}
	}

	if !res.OK() {
		return fmt.Errorf("refresh failed: %s", res.Reason)
	}

	for _, cat := range res.Catalog.Categories {
		fmt.Fprintf(deps.Stdout, "%s: %d\n", cat.Name, len(cat.Items))
	}
	for _, name := range res.SkippedSheets {
		fmt.Fprintf(deps.Stdout, "%s: skipped (less than 2 columns)\n", name)
	}
	fmt.Fprintf(deps.Stdout, "sheets=%d items=%d cache=%s\n", res.Sheets, res.Items, cacheState(res))
	return nil
}

func cacheState(res *catalog.Result) string {
	if res.CacheWritten {
		return "written"
	}
	return "not written"
}

// SearchCmd 输出商品的图片搜索链接
type SearchCmd struct {
	Query string `arg:"" help:"Product name"`
	JSON  bool   `help:"Print url, keywords and original as JSON"`
}

// Run 执行 search 命令
func (c *SearchCmd) Run(deps *Dependencies) error {
	builder, err := deps.newBuilder()
	if err != nil {
		return err
	}
	result, err := builder.Build(c.Query)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintln(deps.Stdout, result.URL)
	return nil
}

// HistoryCmd 显示最近的加载记录
type HistoryCmd struct {
	Limit int `short:"n" default:"10" help:"Number of entries"`
}

// Run 执行 history 命令
func (c *HistoryCmd) Run(deps *Dependencies) error {
	history, err := deps.openHistory()
	if err != nil {
		return err
	}
	if history == nil {
		return errors.New("load history is disabled (data.history_db is empty)")
	}
	defer history.Close()

	logs, err := history.ListLoadLogs(c.Limit)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Fprintln(deps.Stdout, "No loads recorded yet.")
		return nil
	}

	for _, l := range logs {
		kind := "load"
		if l.Refresh {
			kind = "refresh"
		}
		fmt.Fprintf(deps.Stdout, "%s  %-7s  %-8s  sheets=%d items=%d",
			l.StartedAt.Local().Format("2006-01-02 15:04:05"), kind, l.Source, l.SheetCount, l.ItemCount)
		if l.Reason != "" {
			fmt.Fprintf(deps.Stdout, "  reason=%q", l.Reason)
		}
		fmt.Fprintln(deps.Stdout)
	}
	return nil
}

// InitCmd 写出默认配置文件
type InitCmd struct {
	Path  string `arg:"" optional:"" default:"config.toml" help:"Where to write the config"`
	Force bool   `short:"f" help:"Overwrite an existing file"`
}

// Run 执行 init 命令
func (c *InitCmd) Run(deps *Dependencies) error {
	if _, err := os.Stat(c.Path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite", c.Path)
	}
	if err := config.Save(c.Path, config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(deps.Stdout, "已写入 %s\n", c.Path)
	return nil
}
