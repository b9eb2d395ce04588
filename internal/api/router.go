package api

import (
	"time"

	"allergy-checker/internal/api/handlers/allergy"
	"allergy-checker/internal/api/handlers/health"
	"allergy-checker/internal/api/middleware"
	"allergy-checker/internal/core/session"
	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/infrastructure/metrics"
	"allergy-checker/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由；m 為 nil 時不提供 /metrics
func SetupRouter(cfg *config.Config, ctrl *session.Controller, m *metrics.Metrics) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件；請求 ID 需最先產生，日誌與恢復才能帶上
	router.Use(requestid.New())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(m))

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制與請求超時
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.RequestContext(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, ctrl)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit))
	}

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	allergy.NewHandler(ctrl, cfg.App.Debug).RegisterRoutes(api, dedup.Handler())

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Duration("dedup_window", cfg.DedupWindow),
	)

	return router
}
