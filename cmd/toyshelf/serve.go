package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"toyshelf/internal/api"
	"toyshelf/internal/launcher"
	"toyshelf/internal/server"
)

// readyTimeout 等待服务可访问的最长时间，超时后不再自动打开浏览器
const readyTimeout = 5 * time.Second

// ServeCmd 启动 Web 服务
type ServeCmd struct {
	Port      int  `short:"p" help:"Server port (config.toml wins when it sets server.port)"`
	Dev       bool `help:"Development mode (debug logging, no browser)"`
	NoBrowser bool `help:"Do not open the browser"`
	SkipCheck bool `help:"Start even if required files are missing"`
}

// Run 执行 serve 命令
func (c *ServeCmd) Run(deps *Dependencies) error {
	cfg := deps.Config

	// 命令行参数覆盖配置
	if c.Port > 0 && !deps.ConfigInfo.PortSpecified {
		cfg.Server.Port = c.Port
	}
	if c.Dev {
		cfg.Server.DevMode = true
	}
	if c.NoBrowser {
		cfg.Server.OpenBrowser = false
	}

	printBanner(deps)

	report := launcher.Preflight(cfg)
	printReport(deps, report)
	if !report.OK() && !c.SkipCheck {
		return errors.New("preflight check failed, use --skip-check to start anyway")
	}

	builder, err := deps.newBuilder()
	if err != nil {
		return err
	}
	history, err := deps.openHistory()
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
	}

	handler := api.NewHandler(api.Options{
		Loader:  deps.newLoader(),
		Builder: builder,
		History: history,
		Limiter: api.NewRefreshLimiter(cfg.Server.RefreshPerMinute),
		Logger:  deps.Logger,
	})
	srv := server.NewServer(handler, cfg.Server.DevMode, deps.Logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	openBrowser := cfg.Server.OpenBrowser && !cfg.Server.DevMode && deps.OpenBrowser != nil
	fmt.Fprintf(deps.Stdout, "服务启动中，监听端口 %d ...\n", cfg.Server.Port)
	if !openBrowser {
		fmt.Fprintf(deps.Stdout, "请访问 %s\n", url)
	}
	fmt.Fprintln(deps.Stdout, "\n按 Ctrl+C 停止服务...")

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		return srv.Run(ctx, addr)
	})

	if openBrowser {
		g.Go(func() error {
			if err := waitReady(ctx, fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port), readyTimeout); err != nil {
				return nil
			}
			fmt.Fprintf(deps.Stdout, "正在打开浏览器: %s\n", url)
			if err := deps.OpenBrowser(url); err != nil {
				fmt.Fprintf(deps.Stdout, "无法自动打开浏览器，请手动访问: %s\n", url)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	fmt.Fprintln(deps.Stdout, "\n服务已关闭")
	return nil
}

// waitReady 轮询直到端口可连接
func waitReady(ctx context.Context, addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func printBanner(deps *Dependencies) {
	line := strings.Repeat("=", 42)
	fmt.Fprintln(deps.Stdout, line)
	fmt.Fprintln(deps.Stdout, "  玩具資料瀏覽器")
	fmt.Fprintln(deps.Stdout, line)
	if deps.ConfigInfo.FileFound {
		fmt.Fprintf(deps.Stdout, "配置文件: %s\n", deps.ConfigInfo.Path)
	}
}

func printReport(deps *Dependencies, report launcher.Report) {
	for _, c := range report.Checks {
		mark := "[OK]"
		if !c.OK {
			mark = "[X] "
			if !c.Required {
				mark = "[!] "
			}
		}
		fmt.Fprintf(deps.Stdout, "%s %-18s %s (%s)\n", mark, c.Name, c.Path, c.Detail)
	}
}
