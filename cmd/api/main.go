package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/schoolcore/gradebook-api/api/swagger"
	"github.com/schoolcore/gradebook-api/internal/handler"
	"github.com/schoolcore/gradebook-api/internal/middleware"
	"github.com/schoolcore/gradebook-api/internal/models"
	"github.com/schoolcore/gradebook-api/internal/repository"
	"github.com/schoolcore/gradebook-api/internal/service"
	"github.com/schoolcore/gradebook-api/pkg/cache"
	"github.com/schoolcore/gradebook-api/pkg/config"
	"github.com/schoolcore/gradebook-api/pkg/database"
	"github.com/schoolcore/gradebook-api/pkg/logger"
	corsmiddleware "github.com/schoolcore/gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/schoolcore/gradebook-api/pkg/middleware/requestid"
)

// @title Gradebook API
// @version 1.0.0
// @description Grading configuration and score aggregation service
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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, result caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	schemeRepo := repository.NewSchemeRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	bandRepo := repository.NewGradeBandRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	resultCache := service.NewResultCache(cacheRepo, cfg.Results.CacheTTL)
	metricsSvc := service.NewMetricsService()
	schemeSvc := service.NewSchemeService(schemeRepo, scoreRepo, directoryRepo, validate, logr)
	scoreSvc := service.NewScoreService(scoreRepo, schemeRepo, enrollmentRepo, resultCache, validate, logr)
	batchSvc := service.NewScoreBatchService(scoreRepo, schemeRepo, enrollmentRepo, resultCache, metricsSvc, validate, logr)
	resultSvc := service.NewResultService(scoreRepo, bandRepo, enrollmentRepo, sessionRepo, resultCache, metricsSvc, logr)
	bandSvc := service.NewGradeBandService(bandRepo, validate, logr)
	exportSvc := service.NewExportService(resultSvc, cfg.Exports.Enabled, logr, nil, nil)

	schemeHandler := handler.NewSchemeHandler(schemeSvc)
	scoreHandler := handler.NewScoreHandler(scoreSvc, batchSvc)
	resultHandler := handler.NewResultHandler(resultSvc, exportSvc)
	bandHandler := handler.NewGradeBandHandler(bandSvc)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Tenant(cfg.JWT.Secret))

	staff := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)
	admin := middleware.RequireRoles(models.RoleAdmin)

	schemes := api.Group("/grading-schemes")
	{
		schemes.GET("", staff, schemeHandler.Get)
		schemes.GET("/class/:classId", admin, schemeHandler.ListByClass)
		schemes.POST("", staff, schemeHandler.Create)
		schemes.PUT("", staff, schemeHandler.Update)
		schemes.DELETE("", staff, schemeHandler.Delete)
	}

	scores := api.Group("/scores")
	{
		scores.GET("", staff, scoreHandler.List)
		scores.POST("", staff, scoreHandler.Submit)
		scores.PUT("", staff, scoreHandler.Update)
		scores.POST("/batch", staff, scoreHandler.BatchSubmit)
		scores.PATCH("/batch", staff, scoreHandler.BatchUpdate)
	}

	results := api.Group("/results")
	{
		results.GET("/students/:id", resultHandler.StudentReport)
		results.GET("/students/:id/report", resultHandler.MultiTermReport)
		results.GET("/classes/:id", staff, resultHandler.ClassResults)
		results.GET("/classes/:id/subjects/:subjectId/stats", staff, resultHandler.SubjectStatistics)
		results.GET("/classes/:id/export", staff, resultHandler.Export)
	}

	bands := api.Group("/grade-bands")
	{
		bands.GET("", bandHandler.List)
		bands.PUT("", admin, bandHandler.Replace)
	}

	api.GET("/metrics/system", admin, metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
