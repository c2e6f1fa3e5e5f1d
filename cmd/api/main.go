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
	"go.uber.org/zap"

	_ "github.com/AHSANooo/Clashes-Detector/api/swagger"
	"github.com/AHSANooo/Clashes-Detector/internal/handler"
	internalmiddleware "github.com/AHSANooo/Clashes-Detector/internal/middleware"
	"github.com/AHSANooo/Clashes-Detector/internal/repository"
	"github.com/AHSANooo/Clashes-Detector/internal/service"
	"github.com/AHSANooo/Clashes-Detector/internal/timetable"
	"github.com/AHSANooo/Clashes-Detector/pkg/cache"
	"github.com/AHSANooo/Clashes-Detector/pkg/config"
	"github.com/AHSANooo/Clashes-Detector/pkg/export"
	"github.com/AHSANooo/Clashes-Detector/pkg/jobs"
	"github.com/AHSANooo/Clashes-Detector/pkg/logger"
	corsmiddleware "github.com/AHSANooo/Clashes-Detector/pkg/middleware/cors"
	reqidmiddleware "github.com/AHSANooo/Clashes-Detector/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title Clashes Detector API
// @version 1.0.0
// @description Course catalog, clash detection and schedule optimisation over a university timetable grid.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := newGridSource(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to init grid source", zap.Error(err))
	}

	cacheRepo, closeCache, err := newCacheRepository(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to init cache", zap.Error(err))
	}
	defer closeCache()

	svcs := newServices(cfg, logr, source, cacheRepo)
	r := newRouter(cfg, logr, svcs)

	refresher := jobs.NewPeriodic("grid-refresh", svcs.timetable.Refresh, jobs.PeriodicConfig{
		Interval:   cfg.Grid.RefreshInterval,
		MaxRetries: 3,
		RetryDelay: 30 * time.Second,
		Logger:     logr,
	})
	refresher.Start(ctx)
	defer refresher.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "grid", source.ID())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type services struct {
	metrics   *service.MetricsService
	timetable *service.TimetableService
	export    *service.ExportService
}

func newServices(cfg *config.Config, logr *zap.Logger, source service.GridSource, cacheRepo service.CacheRepository) *services {
	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	engine := timetable.NewEngine(timetable.NewTimeParser(timetable.MeridiemPolicy{
		MorningFrom: cfg.Time.MorningFrom,
		MorningTo:   cfg.Time.MorningTo,
		AfternoonTo: cfg.Time.AfternoonTo,
	}))

	timetableSvc := service.NewTimetableService(source, engine, cacheSvc, metricsSvc, validate, logr, service.TimetableConfig{
		MaxLeaves:     cfg.Search.MaxLeaves,
		SearchTimeout: cfg.Search.Timeout,
		CacheTTL:      cfg.Cache.TTL,
		ProposalTTL:   cfg.Search.ProposalTTL,
	})
	exportSvc := service.NewExportService(timetableSvc, validate, logr, export.NewCSVExporter(), export.NewPDFExporter())

	return &services{metrics: metricsSvc, timetable: timetableSvc, export: exportSvc}
}

func newRouter(cfg *config.Config, logr *zap.Logger, svcs *services) *gin.Engine {
	timetableHandler := handler.NewTimetableHandler(svcs.timetable)
	exportHandler := handler.NewExportHandler(svcs.export)
	metricsHandler := handler.NewMetricsHandler(svcs.metrics, svcs.timetable)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(svcs.metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/metrics/summary", metricsHandler.Summary)
	api.GET("/courses", timetableHandler.Courses)
	api.POST("/timetable", timetableHandler.Timetable)
	api.GET("/batches/:batch/sessions", timetableHandler.BatchSessions)
	api.POST("/clashes", timetableHandler.Clashes)
	api.POST("/schedule/optimize", timetableHandler.Optimize)
	api.POST("/schedule/export", exportHandler.Export)
	api.DELETE("/cache", timetableHandler.InvalidateCache)

	return r
}

func newGridSource(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.GridSource, error) {
	switch cfg.Grid.Source {
	case config.GridSourceFile, "":
		return repository.NewGridFileRepository(cfg.Grid.File, logr), nil
	case config.GridSourceSheets:
		return repository.NewGridSheetsRepository(ctx, repository.SheetsConfig{
			SpreadsheetID:   cfg.Grid.SpreadsheetID,
			APIKey:          cfg.Grid.APIKey,
			CredentialsFile: cfg.Grid.CredentialsFile,
			Timeout:         cfg.Grid.Timeout,
		}, logr)
	default:
		return nil, fmt.Errorf("unknown grid source %q", cfg.Grid.Source)
	}
}

func newCacheRepository(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.CacheRepository, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory, "":
		return repository.NewMemoryCacheRepository(cache.NewMemory(nil)), func() {}, nil
	case config.CacheBackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewRedisCacheRepository(client, logr)
		return repo, func() {
			if err := repo.Close(); err != nil {
				logr.Warn("redis close failed", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
