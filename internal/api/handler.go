package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"toyshelf/internal/catalog"
	"toyshelf/internal/search"
	"toyshelf/internal/store"
)

// Options 处理器依赖
type Options struct {
	Loader  *catalog.Loader
	Builder *search.Builder
	History *store.Store  // 可为 nil，表示不记录加载历史
	Limiter *rate.Limiter // 可为 nil，表示刷新不限速
	Logger  *slog.Logger
}

// Handler API 处理器
type Handler struct {
	loader  *catalog.Loader
	builder *search.Builder
	history *store.Store
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		loader:  opts.Loader,
		builder: opts.Builder,
		history: opts.History,
		limiter: opts.Limiter,
		logger:  logger,
	}
}

// NewRefreshLimiter 每分钟最多 perMinute 次刷新；perMinute 为 0 时返回 nil
func NewRefreshLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 目录数据
	router.GET("/data", h.GetData)
	router.GET("/refresh", h.Refresh)

	// 图片搜索链接
	router.GET("/search", h.Search)

	// 系统状态与加载历史
	router.GET("/status", h.GetStatus)
	router.GET("/history", h.ListHistory)
}
