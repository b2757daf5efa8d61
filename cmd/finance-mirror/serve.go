package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-finance-mirror/api/swagger"
	"github.com/noah-isme/sma-finance-mirror/internal/handler"
	"github.com/noah-isme/sma-finance-mirror/internal/repository"
	"github.com/noah-isme/sma-finance-mirror/internal/service"
	"github.com/noah-isme/sma-finance-mirror/pkg/cache"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
	"github.com/noah-isme/sma-finance-mirror/pkg/database"
	"github.com/noah-isme/sma-finance-mirror/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and follow upstream changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(parent, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	documents := repository.NewDocumentRepository(db)

	// Without Redis the mirror still works: caching is off and the periodic
	// fingerprint refresh picks up changes.
	var changes service.ChangeSubscriber
	health := handler.HealthChecks{Database: documents}
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, running without cache and change feed", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	if redisClient != nil {
		defer cacheRepo.Close()
		changes = repository.NewChangeFeed(redisClient, cfg.Mirror.ChangeChannel, logr)
		health.Cache = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	mirror := service.NewMirrorService(service.MirrorServiceParams{
		Documents: documents,
		Changes:   changes,
		Cache:     cacheSvc,
		Metrics:   metrics,
		Logger:    logr,
		Config:    cfg.Mirror,
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mirror.Start(ctx); err != nil {
		return err
	}
	defer mirror.Stop()

	validate := validator.New()
	finance := service.NewFinanceService(service.FinanceServiceParams{
		Snapshots: mirror, Cache: cacheSvc, Logger: logr, Billing: cfg.Billing, CacheTTL: cfg.Dashboard.CacheTTL,
	})
	students := service.NewStudentService(service.StudentServiceParams{
		Snapshots: mirror, Cache: cacheSvc, Validator: validate, Logger: logr, Billing: cfg.Billing, CacheTTL: cfg.Dashboard.CacheTTL,
	})
	outstanding := service.NewOutstandingService(service.OutstandingServiceParams{
		Snapshots: mirror, Cache: cacheSvc, Logger: logr, Billing: cfg.Billing, CacheTTL: cfg.Dashboard.CacheTTL,
	})
	staff := service.NewStaffService(mirror, validate, cfg.Billing, cfg.Staff)
	exports := service.NewExportService(staff, outstanding, logr, nil, nil)

	router := handler.NewRouter(handler.RouterParams{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Mirror:         mirror,
		Health:         health,
		Dashboard:      handler.NewDashboardHandler(finance),
		Students:       handler.NewStudentHandler(students),
		Outstanding:    handler.NewOutstandingHandler(outstanding, exports),
		Expenses:       handler.NewExpenseHandler(service.NewExpenseService(mirror, cfg.Billing)),
		Inventories:    handler.NewInventoryHandler(service.NewInventoryService(mirror, cfg.Billing, cfg.Inventory)),
		Staff:          handler.NewStaffHandler(staff, exports),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
