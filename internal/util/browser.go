package util

import (
	"os/exec"
	"runtime"
)

// startCommand 启动外部进程，不等待其退出（测试中替换）
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// linuxFallbacks Linux 下 xdg-open 失败时依次尝试的浏览器
var linuxFallbacks = []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"}

// BrowserCommand 返回指定系统下打开 url 的命令
func BrowserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		// rundll32 调用 url.dll，比 cmd /c start 更稳定
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// OpenBrowser 打开默认浏览器
// 支持 Windows, macOS, Linux
func OpenBrowser(url string) error {
	name, args := BrowserCommand(runtime.GOOS, url)
	return startCommand(name, args...)
}

// OpenBrowserWithFallback 带降级方案的浏览器打开
// 如果主要方式失败，会尝试备选方式
func OpenBrowserWithFallback(url string) error {
	return openWithFallback(runtime.GOOS, url)
}

func openWithFallback(goos, url string) error {
	name, args := BrowserCommand(goos, url)
	err := startCommand(name, args...)
	if err == nil {
		return nil
	}

	// 降级方案
	switch goos {
	case "windows":
		return startCommand("explorer", url)
	case "linux":
		for _, browser := range linuxFallbacks {
			if startCommand(browser, url) == nil {
				return nil
			}
		}
	}

	return err
}
