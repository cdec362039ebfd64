package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bisolaadigun/tutor-hours-api/api/swagger"
	"github.com/bisolaadigun/tutor-hours-api/internal/handler"
	"github.com/bisolaadigun/tutor-hours-api/internal/middleware"
	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	"github.com/bisolaadigun/tutor-hours-api/internal/notification"
	"github.com/bisolaadigun/tutor-hours-api/internal/repository"
	"github.com/bisolaadigun/tutor-hours-api/internal/service"
	"github.com/bisolaadigun/tutor-hours-api/pkg/cache"
	"github.com/bisolaadigun/tutor-hours-api/pkg/config"
	"github.com/bisolaadigun/tutor-hours-api/pkg/database"
	"github.com/bisolaadigun/tutor-hours-api/pkg/logger"
	corsmiddleware "github.com/bisolaadigun/tutor-hours-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bisolaadigun/tutor-hours-api/pkg/middleware/requestid"
)

// @title Tutor Hours API
// @version 1.0.0
// @description Role-gated tutoring hours workflow with admin review and audit trail
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	reviewLogRepo := repository.NewReviewLogRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "tutor-hours-api",
	})

	var notifier service.SubmitNotifier
	if emailNotifier := notification.NewEmailNotifier(cfg.Email, logr); emailNotifier != nil {
		notifier = emailNotifier
	}

	var statsCache service.StatsCache
	if cacheRepo != nil {
		statsCache = cacheRepo
	}
	reportSvc := service.NewReportService(sessionRepo, statsCache, cfg.Stats.CacheTTL, logr)

	sessionSvc := service.NewSessionService(sessionRepo, reviewLogRepo, notifier, logr,
		service.WithSessionStatsInvalidator(reportSvc))
	reviewSvc := service.NewReviewService(sessionRepo, reviewLogRepo, metricsSvc, logr,
		service.WithReviewStatsInvalidator(reportSvc))

	authHandler := handler.NewAuthHandler(authSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	adminHandler := handler.NewAdminHandler(reviewSvc, reportSvc, sessionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	sessions := api.Group("/sessions", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTutor, models.RoleAdmin))
	sessions.POST("", sessionHandler.Create)
	sessions.GET("", sessionHandler.List)
	sessions.GET("/:id", sessionHandler.Get)
	sessions.PUT("/:id", sessionHandler.Update)
	sessions.DELETE("/:id", sessionHandler.Delete)
	sessions.POST("/:id/submit", sessionHandler.Submit)

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/sessions", adminHandler.ListSessions)
	admin.POST("/sessions/:id/approve", adminHandler.Approve)
	admin.POST("/sessions/:id/reject", adminHandler.Reject)
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/export/csv", adminHandler.ExportCSV)
	admin.GET("/export/pdf", adminHandler.ExportPDF)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
