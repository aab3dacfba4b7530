package health

import (
	"net/http"
	"runtime"
	"time"

	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/catalog"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Status 健康檢查需要的服務狀態
type Status interface {
	Ready() bool
	Source() catalog.Source
	CacheStats() *cache.Stats
	QueueStatus() *queue.Status
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   *catalog.Source        `json:"catalog,omitempty"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
	Queue     *queue.Status          `json:"queue,omitempty"`
}

// Handler 健康檢查處理程序
type Handler struct {
	status  Status
	version string
}

// NewHandler 創建健康檢查處理程序
func NewHandler(status Status, version string) *Handler {
	return &Handler{status: status, version: version}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Cache: h.status.CacheStats(),
		Queue: h.status.QueueStatus(),
	}
	if h.status.Ready() {
		source := h.status.Source()
		response.Catalog = &source
	} else {
		response.Status = "degraded"
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 目錄載入前回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if !h.status.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"code":   common.ErrCodeServiceUnavailable,
			"reason": common.ErrCatalogNotLoaded.Message,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"recipes": h.status.Source().Recipes,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
