package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/campus-cms-api/api/swagger"
	"github.com/noah-isme/campus-cms-api/internal/dto"
	"github.com/noah-isme/campus-cms-api/internal/handler"
	"github.com/noah-isme/campus-cms-api/internal/middleware"
	"github.com/noah-isme/campus-cms-api/internal/repository"
	"github.com/noah-isme/campus-cms-api/internal/service"
	"github.com/noah-isme/campus-cms-api/pkg/cache"
	"github.com/noah-isme/campus-cms-api/pkg/clock"
	"github.com/noah-isme/campus-cms-api/pkg/config"
	"github.com/noah-isme/campus-cms-api/pkg/database"
	"github.com/noah-isme/campus-cms-api/pkg/jobs"
	"github.com/noah-isme/campus-cms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-cms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-cms-api/pkg/middleware/requestid"
)

// @title Campus CMS API
// @version 1.0.0
// @description Make-up class scheduling and remedial-code attendance service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	clk := clock.System()
	metrics := service.NewMetricsService()

	sessionRepo := repository.NewMakeupSessionRepository(db)
	attendanceRepo := repository.NewMakeupAttendanceRepository(db)
	suggestionRepo := repository.NewSuggestionRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	workloadRepo := repository.NewWorkloadRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Workload.CacheTTL, logr, redisClient != nil)
	schedulerSvc := service.NewSchedulerService(sessionRepo, suggestionRepo, cfg.Makeup, clk, logr)
	makeupSvc := service.NewMakeupService(sessionRepo, suggestionRepo, attendanceRepo, courseRepo, schedulerSvc, cfg.Makeup, validate, clk, logr, metrics)
	attendanceSvc := service.NewAttendanceService(sessionRepo, attendanceRepo, courseRepo, validate, clk, logr, metrics)
	workloadSvc := service.NewWorkloadService(workloadRepo, cacheSvc, cfg.Workload, validate, clk, logr, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recalcQueue := jobs.NewQueue("workloads", func(ctx context.Context, job jobs.Job) error {
		query, ok := job.Payload.(dto.WorkloadQuery)
		if !ok {
			return fmt.Errorf("unexpected payload for job %s", job.ID)
		}
		return workloadSvc.Recalculate(ctx, query)
	}, jobs.QueueConfig{
		Workers:    cfg.Workload.QueueWorkers,
		MaxRetries: cfg.Workload.QueueRetries,
		Logger:     logr,
	})
	recalcQueue.Start(ctx)
	defer recalcQueue.Stop()

	makeupHandler := handler.NewMakeupHandler(makeupSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	workloadHandler := handler.NewWorkloadHandler(workloadSvc, recalcQueue)
	metricsHandler := handler.NewMetricsHandler(metrics, db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		sessions := api.Group("/makeup/sessions")
		{
			sessions.POST("", makeupHandler.Create)
			sessions.GET("", makeupHandler.List)
			sessions.GET("/:id", makeupHandler.Get)
			sessions.POST("/:id/activate", makeupHandler.Activate)
			sessions.POST("/:id/deactivate", makeupHandler.Deactivate)
			sessions.POST("/:id/regenerate", makeupHandler.Regenerate)
			sessions.POST("/:id/cancel", makeupHandler.Cancel)
			sessions.GET("/:id/code-status", makeupHandler.CodeStatus)
		}
		api.POST("/makeup/attendance", attendanceHandler.Mark)
		api.POST("/makeup/suggestions/:id/accept", makeupHandler.AcceptSuggestion)

		if cfg.Workload.Enabled {
			api.GET("/workloads", workloadHandler.Report)
			api.POST("/workloads/recalculate", workloadHandler.Recalculate)
			api.GET("/workloads/export", workloadHandler.Export)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}

	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("closing redis failed", "error", err)
	}
}
