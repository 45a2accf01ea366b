package model

import "time"

// LoadLog 一次目录加载的记录（不含目录内容）
type LoadLog struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"runId"`
	Source        string    `json:"source"` // cache/workbook/empty
	Reason        string    `json:"reason,omitempty"`
	WorkbookPath  string    `json:"workbookPath"`
	WorkbookHash  string    `json:"workbookHash,omitempty"`
	SheetCount    int       `json:"sheetCount"`
	ItemCount     int       `json:"itemCount"`
	SkippedSheets []string  `json:"skippedSheets"`
	CacheWritten  bool      `json:"cacheWritten"`
	Refresh       bool      `json:"refresh"` // 是否由刷新触发
	DurationMs    int64     `json:"durationMs"`
	StartedAt     time.Time `json:"startedAt"`
}
