// Package catalog 读取 Excel 工作簿并维护 JSON 缓存
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"toyshelf/internal/model"
)

// nameColumn 商品名称所在列（B 列）
const nameColumn = 1

// Options 加载器配置
type Options struct {
	WorkbookPath string
	CachePath    string
	Logger       *slog.Logger
}

// Loader 工作簿加载器：优先读缓存，否则解析工作簿并写缓存
type Loader struct {
	workbookPath string
	cachePath    string
	logger       *slog.Logger
}

// NewLoader 创建加载器
func NewLoader(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		workbookPath: opts.WorkbookPath,
		cachePath:    opts.CachePath,
		logger:       logger,
	}
}

// WorkbookPath 工作簿路径
func (l *Loader) WorkbookPath() string {
	return l.workbookPath
}

// CachePath 缓存路径
func (l *Loader) CachePath() string {
	return l.cachePath
}

// Load 加载目录。缓存存在时原样返回缓存内容，不读取工作簿。
// 任何读取错误都会被记录并返回空目录。
func (l *Loader) Load() *Result {
	res := &Result{
		RunID:        uuid.New().String(),
		WorkbookPath: l.workbookPath,
		StartedAt:    time.Now(),
	}
	defer func() {
		res.Duration = time.Since(res.StartedAt)
		res.Sheets = res.Catalog.Len()
		res.Items = res.Catalog.ItemCount()
	}()

	cached, err := ReadCache(l.cachePath)
	switch {
	case err == nil:
		l.logger.Info("loading from cache", "path", l.cachePath)
		res.Catalog = cached
		res.Source = SourceCache
		return res
	case !errors.Is(err, ErrNoCache):
		l.fail(res, err)
		return res
	}

	l.logger.Info("reading workbook", "path", l.workbookPath)
	catalog, skipped, hash, err := l.parseWorkbook()
	if err != nil {
		l.fail(res, err)
		return res
	}
	res.Catalog = catalog
	res.Source = SourceWorkbook
	res.SkippedSheets = skipped
	res.WorkbookHash = hash

	if err := WriteCache(l.cachePath, catalog); err != nil {
		l.logger.Error("failed to save cache", "path", l.cachePath, "err", err)
	} else {
		res.CacheWritten = true
	}

	l.logger.Info("workbook loaded",
		"sheets", catalog.Len(),
		"items", catalog.ItemCount(),
		"skipped", len(skipped),
	)
	return res
}

// Refresh 删除缓存后重新加载
func (l *Loader) Refresh() *Result {
	removed, err := RemoveCache(l.cachePath)
	if err != nil {
		// 缓存删不掉时再加载只会读到旧数据
		res := &Result{
			RunID:        uuid.New().String(),
			WorkbookPath: l.workbookPath,
			StartedAt:    time.Now(),
		}
		l.fail(res, err)
		return res
	}
	if removed {
		l.logger.Info("cache cleared", "path", l.cachePath)
	}
	return l.Load()
}

func (l *Loader) fail(res *Result, err error) {
	l.logger.Error("failed to load catalog", "workbook", l.workbookPath, "err", err)
	res.Catalog = model.NewCatalog()
	res.Source = SourceEmpty
	res.Reason = err.Error()
}

// parseWorkbook 解析工作簿：每个工作表的 B 列（首行为表头）
func (l *Loader) parseWorkbook() (*model.Catalog, []string, string, error) {
	data, err := os.ReadFile(l.workbookPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, "", fmt.Errorf("excel file not found: %w", err)
		}
		return nil, nil, "", fmt.Errorf("failed to read excel: %w", err)
	}
	hash := fmt.Sprintf("%016x", xxhash.Sum64(data))

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open excel: %w", err)
	}
	defer file.Close()

	catalog := model.NewCatalog()
	var skipped []string

	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		if columnCount(rows) < 2 {
			l.logger.Info("sheet has less than 2 columns, skipping", "sheet", sheet)
			skipped = append(skipped, sheet)
			continue
		}

		items := ExtractItems(rows)
		catalog.Add(sheet, items)
		l.logger.Debug("sheet processed", "sheet", sheet, "items", len(items))
	}

	return catalog, skipped, hash, nil
}

// ExtractItems 从工作表行数据中取出 B 列商品名（跳过表头与空白单元格）
func ExtractItems(rows [][]string) []model.Item {
	items := []model.Item{}
	if len(rows) <= 1 {
		return items
	}
	for _, row := range rows[1:] {
		if len(row) <= nameColumn {
			continue
		}
		name := strings.TrimSpace(row[nameColumn])
		if name == "" {
			continue
		}
		items = append(items, model.Item{Name: name})
	}
	return items
}

// columnCount 工作表列数，以最宽的一行为准
func columnCount(rows [][]string) int {
	n := 0
	for _, row := range rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}
