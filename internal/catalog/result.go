package catalog

import (
	"time"

	"toyshelf/internal/model"
)

// Source 目录数据来源
type Source string

const (
	SourceCache    Source = "cache"    // 来自缓存文件
	SourceWorkbook Source = "workbook" // 重新解析 Excel
	SourceEmpty    Source = "empty"    // 读取失败，返回空目录
)

// Result 一次加载的结果。Catalog 永不为 nil，失败时为空目录并附带 Reason
type Result struct {
	RunID         string         `json:"runId"`
	Catalog       *model.Catalog `json:"-"`
	Source        Source         `json:"source"`
	Reason        string         `json:"reason,omitempty"`
	WorkbookPath  string         `json:"workbookPath"`
	WorkbookHash  string         `json:"workbookHash,omitempty"`
	Sheets        int            `json:"sheets"`
	Items         int            `json:"items"`
	SkippedSheets []string       `json:"skippedSheets,omitempty"`
	CacheWritten  bool           `json:"cacheWritten"`
	StartedAt     time.Time      `json:"startedAt"`
	Duration      time.Duration  `json:"duration"`
}

// OK 是否得到了有效数据（缓存或工作簿）
func (r *Result) OK() bool {
	return r.Source != SourceEmpty
}

// Log 转换为加载记录
func (r *Result) Log(refresh bool) model.LoadLog {
	skipped := r.SkippedSheets
	if skipped == nil {
		skipped = []string{}
	}
	return model.LoadLog{
		RunID:         r.RunID,
		Source:        string(r.Source),
		Reason:        r.Reason,
		WorkbookPath:  r.WorkbookPath,
		WorkbookHash:  r.WorkbookHash,
		SheetCount:    r.Sheets,
		ItemCount:     r.Items,
		SkippedSheets: skipped,
		CacheWritten:  r.CacheWritten,
		Refresh:       refresh,
		DurationMs:    r.Duration.Milliseconds(),
		StartedAt:     r.StartedAt,
	}
}
