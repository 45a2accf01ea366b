// Package launcher 启动前检查必要文件
package launcher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"toyshelf/internal/config"
)

// Check 单项检查结果
type Check struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	OK       bool   `json:"ok"`
	Required bool   `json:"required"`
	Detail   string `json:"detail"`
}

// Report 检查报告
type Report struct {
	Checks []Check `json:"checks"`
}

// OK 所有必需项均通过
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if c.Required && !c.OK {
			return false
		}
	}
	return true
}

// Preflight 检查工作簿、缓存目录与历史数据库目录
func Preflight(cfg *config.AppConfig) Report {
	checks := []Check{
		checkWorkbook(cfg.Data.Workbook),
		checkCache(cfg.Data.CacheFile),
		checkWritableDir("cache directory", filepath.Dir(cfg.Data.CacheFile), true),
	}
	if cfg.Data.HistoryDB != "" {
		checks = append(checks, checkWritableDir("history directory", filepath.Dir(cfg.Data.HistoryDB), false))
	}
	return Report{Checks: checks}
}

func checkWorkbook(path string) Check {
	c := Check{Name: "workbook", Path: path, Required: true}

	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Detail = "not found, prepare the Excel file first"
		} else {
			c.Detail = fmt.Sprintf("cannot open: %v", err)
		}
		return c
	}
	defer f.Close()

	c.OK = true
	c.Detail = fmt.Sprintf("%d sheets", f.SheetCount)
	return c
}

func checkCache(path string) Check {
	c := Check{Name: "cache", Path: path, OK: true}
	info, err := os.Stat(path)
	if err != nil {
		c.Detail = "absent, will be built on first load"
		return c
	}
	c.Detail = fmt.Sprintf("present (%d bytes, %s)", info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
	return c
}

// checkWritableDir 检查目录可写；目录不存在时不创建，只检查最近的已存在上级目录
func checkWritableDir(name, dir string, required bool) Check {
	c := Check{Name: name, Path: dir, Required: required}

	probeDir, missing, err := existingAncestor(dir)
	if err != nil {
		c.Detail = fmt.Sprintf("cannot stat: %v", err)
		return c
	}
	f, err := os.CreateTemp(probeDir, ".toyshelf-check-*")
	if err != nil {
		c.Detail = fmt.Sprintf("not writable: %v", err)
		return c
	}
	f.Close()
	_ = os.Remove(f.Name())

	c.OK = true
	c.Detail = "writable"
	if missing {
		c.Detail = "missing, will be created on first write"
	}
	return c
}

// existingAncestor 返回 dir 本身或其最近的已存在上级目录
func existingAncestor(dir string) (string, bool, error) {
	missing := false
	for {
		info, err := os.Stat(dir)
		switch {
		case err == nil:
			if !info.IsDir() {
				return "", missing, fmt.Errorf("%s is not a directory", dir)
			}
			return dir, missing, nil
		case !os.IsNotExist(err):
			return "", missing, err
		}
		missing = true
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", missing, err
		}
		dir = parent
	}
}
