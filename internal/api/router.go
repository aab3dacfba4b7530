package api

import (
	"context"
	"time"

	catalogHandler "meal-planner/internal/api/handlers/catalog"
	"meal-planner/internal/api/handlers/health"
	planHandler "meal-planner/internal/api/handlers/plan"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter 設置路由，ctx 結束時停止背景清理
func SetupRouter(ctx context.Context, cfg *config.Config, svc *planner.Service) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 健康檢查與指標不受限流影響
	healthH := health.NewHandler(svc, cfg.App.Version)
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		go limiter.StartCleanup(10*time.Minute, ctx.Done())
		api.Use(limiter.Middleware())
	}
	api.Use(middleware.NewDeduplicator(cfg.DedupWindow).Middleware())
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	{
		plans := planHandler.NewHandler(svc, cfg.App.Debug)
		api.POST("/plans", plans.HandleGenerate)
		api.POST("/plans/batch", plans.HandleBatch)

		catalog := catalogHandler.NewHandler(svc, cfg.App.Debug)
		api.POST("/catalog/preview", catalog.HandlePreview)
		api.GET("/catalog/stats", catalog.HandleStats)
		api.GET("/recipes/:id", catalog.HandleRecipe)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)
	return router
}
