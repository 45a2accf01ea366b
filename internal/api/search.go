package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Search 为单个商品生成图片搜索链接
// GET /api/search?q=...
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter"})
		return
	}

	result, err := h.builder.Build(query)
	if err != nil {
		h.logger.Error("failed to build search url", "query", query, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
