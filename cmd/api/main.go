package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"allergy-checker/internal/api"
	"allergy-checker/internal/core/ai/lookup"
	"allergy-checker/internal/core/ai/queue"
	"allergy-checker/internal/core/catalog"
	"allergy-checker/internal/core/session"
	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/infrastructure/metrics"
	"allergy-checker/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（.env 由 LoadConfig 處理）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("Configuration loaded",
		zap.String("openai_api_key", common.MaskAPIKey(cfg.OpenAI.APIKey)),
		zap.String("openai_model", cfg.OpenAI.Model),
		zap.String("session_backend", cfg.Session.Backend),
	)

	m := metrics.New()
	cat := catalog.NewStore()

	// 外部查詢隊列
	lookupQueue := queue.NewManager(cfg.Queue)
	defer lookupQueue.Close()

	adapter := lookup.NewAdapter(cfg.OpenAI, m).WithQueue(lookupQueue)
	defer adapter.Close()
	if !adapter.Enabled() {
		common.LogWarn("OPENAI_API_KEY not set, external dish lookup disabled")
	}

	// 初始化會話儲存
	initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	store, err := session.NewStore(initCtx, cfg, m)
	cancel()
	if err != nil {
		common.LogFatal("Failed to initialize session store", zap.Error(err))
	}
	defer store.Close()

	ctrl := session.NewController(cat, adapter, store, cfg.Session, m)
	router := api.SetupRouter(cfg, ctrl, m)

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("starting service",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("shutting down")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("server exited")
}
