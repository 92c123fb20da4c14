package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/obadatech/tarkhees-backend/api/routes"
	"github.com/obadatech/tarkhees-backend/internal/dataset"
	exportsvc "github.com/obadatech/tarkhees-backend/internal/export"
	"github.com/obadatech/tarkhees-backend/internal/query"
	uploadsvc "github.com/obadatech/tarkhees-backend/internal/uploads"
	"github.com/obadatech/tarkhees-backend/pkg/config"
	"github.com/obadatech/tarkhees-backend/pkg/db"
	"github.com/obadatech/tarkhees-backend/pkg/logger"
	"github.com/obadatech/tarkhees-backend/pkg/metrics"
	"github.com/obadatech/tarkhees-backend/pkg/migrate"
	"github.com/obadatech/tarkhees-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	datasets := dataset.NewRedisRepository(redisClient, cfg.Ingest.DatasetSlot, cfg.Ingest.DatasetTTL())
	uploadRepo := uploadsvc.NewRepository(dbClient.DB())
	ingestMetrics := metrics.NewIngestMetrics(prometheus.DefaultRegisterer)

	uploadService, err := uploadsvc.NewService(datasets, uploadRepo, ingestMetrics, uploadsvc.Config{
		MaxUploadBytes: int64(cfg.Ingest.MaxUploadMB) << 20,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create upload service", err)
		os.Exit(1)
	}

	sorter := query.NewSorter(cfg.Ingest.CollatorLocale)
	exportService, err := exportsvc.NewService(datasets, sorter, exportsvc.Config{
		BaseName:  cfg.Export.BaseName,
		SheetName: cfg.Export.SheetName,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Cache:         redisClient,
			Datasets:      datasets,
			UploadService: uploadService,
			UploadRepo:    uploadRepo,
			ExportService: exportService,
			Sorter:        sorter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(ctx, "error closing clients", err)
		os.Exit(1)
	}
}
