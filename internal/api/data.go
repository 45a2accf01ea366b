package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"toyshelf/internal/catalog"
)

// sourceHeader 响应头：本次数据来源（cache/workbook/empty）
const sourceHeader = "X-Catalog-Source"

// GetData 返回全部分类数据（不含搜索链接）
// GET /api/data
func (h *Handler) GetData(c *gin.Context) {
	res := h.loader.Load()
	h.record(res, false)

	c.Header(sourceHeader, string(res.Source))
	c.JSON(http.StatusOK, res.Catalog)
}

// Refresh 清除缓存并重新载入
// GET /api/refresh
func (h *Handler) Refresh(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Refresh rate limited, try again later"})
		return
	}

	res := h.loader.Refresh()
	h.record(res, true)

	c.Header(sourceHeader, string(res.Source))
	c.JSON(http.StatusOK, res.Catalog)
}

// record 写入加载历史，失败只记录日志
func (h *Handler) record(res *catalog.Result, refresh bool) {
	if h.history == nil {
		return
	}
	if _, err := h.history.InsertLoadLog(res.Log(refresh)); err != nil {
		h.logger.Error("failed to record load", "run_id", res.RunID, "err", err)
	}
}
