package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"allergy-checker/internal/core/ai/lookup"
	"allergy-checker/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 健康檢查需要的依賴
type Dependencies interface {
	Ping(ctx context.Context) error
	GetAdapterStatus() lookup.StatusInfo
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Adapter   lookup.StatusInfo      `json:"adapter"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	deps    Dependencies
}

// NewHandler 創建健康檢查處理器
func NewHandler(version string, deps Dependencies) *Handler {
	return &Handler{version: version, deps: deps}
}

// HealthCheck GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
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
		Adapter: h.deps.GetAdapterStatus(),
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck GET /ready；會話儲存不可用時回傳 503。
// 外部查詢通道非 ready 時仍可服務（僅目錄查詢），狀態一併回傳。
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	adapter := h.deps.GetAdapterStatus()
	if err := h.deps.Ping(ctx); err != nil {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":        "not_ready",
			"session_store": "unavailable",
			"adapter":       adapter,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"session_store": "ok",
		"adapter":       adapter,
	})
}

// LivenessCheck GET /live
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
