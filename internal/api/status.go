package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"toyshelf/internal/catalog"
	"toyshelf/internal/model"
	"toyshelf/internal/store"
)

// maxHistoryLimit 单次查询历史的上限
const maxHistoryLimit = 200

// StatusResponse 系统状态响应
type StatusResponse struct {
	WorkbookPath   string         `json:"workbookPath"`
	WorkbookExists bool           `json:"workbookExists"`
	CachePath      string         `json:"cachePath"`
	CacheExists    bool           `json:"cacheExists"`
	HistoryEnabled bool           `json:"historyEnabled"`
	LastLoad       *model.LoadLog `json:"lastLoad"` // 尚无记录时为 null
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		WorkbookPath:   h.loader.WorkbookPath(),
		WorkbookExists: fileExists(h.loader.WorkbookPath()),
		CachePath:      h.loader.CachePath(),
		CacheExists:    catalog.CacheExists(h.loader.CachePath()),
		HistoryEnabled: h.history != nil,
	}

	if h.history != nil {
		last, err := h.history.LatestLoadLog()
		switch {
		case err == nil:
			resp.LastLoad = &last
		case errors.Is(err, store.ErrNoLoadLog):
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ListHistory 最近的加载记录
// GET /api/history?limit=20
func (h *Handler) ListHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Load history is disabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	logs, err := h.history.ListLoadLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": logs})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
