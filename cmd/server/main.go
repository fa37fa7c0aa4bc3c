package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/racane123/schoolboard/internal/config"
	"github.com/racane123/schoolboard/internal/repository/cache"
	"github.com/racane123/schoolboard/internal/repository/mongodb"
	"github.com/racane123/schoolboard/internal/repository/sheets"
	"github.com/racane123/schoolboard/internal/scheduler"
	"github.com/racane123/schoolboard/internal/server/handlers"
	"github.com/racane123/schoolboard/internal/server/router"
	"github.com/racane123/schoolboard/internal/service/notify"
	reportingsvc "github.com/racane123/schoolboard/internal/service/reporting"
	"github.com/racane123/schoolboard/pkg/clients/backend"
	whatsappclient "github.com/racane123/schoolboard/pkg/clients/whatsapp"
	"github.com/racane123/schoolboard/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid reporting timezone", zap.Error(err))
	}

	var source backend.Source = backend.NewClient(cfg.Backend)

	if cfg.Redis.Enabled() {
		store, err := cache.NewRedisStore(context.Background(), cfg.Redis)
		if err != nil {
			baseLogger.Fatal("failed to init redis cache", zap.Error(err))
		}
		defer func() { _ = store.Close() }()
		source = cache.NewSource(source, store, cfg.Redis.TTL, logger.Named(baseLogger, "repo.cache"))
		baseLogger.Info("backend response cache enabled", zap.Duration("ttl", cfg.Redis.TTL))
	}

	var opts []reportingsvc.Option

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		opts = append(opts, reportingsvc.WithSnapshotStore(mongoRepo))
	} else {
		baseLogger.Warn("MONGODB_URI missing, snapshots will not be stored")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		opts = append(opts, reportingsvc.WithExporter(sheets.NewExporter(sheetsRepo)))
	}

	var notifier notify.Notifier = notify.Disabled{}
	if cfg.WhatsApp.Enabled() {
		notifier = notify.NewWhatsAppNotifier(whatsappclient.NewClient(cfg.WhatsApp), logger.Named(baseLogger, "svc.notify"))
		baseLogger.Info("whatsapp notifications enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, digests disabled")
	}

	reportingSvc := reportingsvc.NewService(source, loc, logger.Named(baseLogger, "svc.reporting"), opts...)

	gin.SetMode(gin.ReleaseMode)
	handler := handlers.NewHandler(reportingSvc, notifier, cfg.WhatsApp.BursarID, logger.Named(baseLogger, "handlers"))
	engine := router.New(handler, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, notifier, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
