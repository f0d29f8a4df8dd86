package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"citegraph/api"
	"citegraph/cache"
	"citegraph/config"
	"citegraph/services"
	"citegraph/storage"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logging, err := newLogger(cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	// Setup Database
	store, err := storage.NewStoreFromConfig(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to citation database.")

	logging.Info("Running database auto-migration...")
	if err := store.Migrate(); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Cache
	topPapersCache := cache.New(cfg)
	defer topPapersCache.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := topPapersCache.Ping(pingCtx); err != nil {
		logging.Warn("Cache not reachable at startup, serving from database until it recovers",
			zap.String("backend", cfg.CacheBackend), zap.Error(err))
	} else {
		logging.Info("Cache connected", zap.String("backend", cfg.CacheBackend))
	}
	cancelPing()

	// Setup Services
	ranking := services.NewRankingService(store, logging)
	topPapers := services.NewTopPapersCache(topPapersCache, ranking, cfg.CacheTTL, logging)
	stats := services.NewStatisticsService(store, logging)

	genOpts := services.DefaultGenerateOptions()
	genOpts.Papers = cfg.GeneratePapers
	genOpts.Citations = cfg.GenerateCitations
	genOpts.PaperBatchSize = cfg.PaperBatchSize
	genOpts.CitationBatchSize = cfg.CitationBatchSize
	generator := services.NewGenerateService(store, genOpts, logging)

	var uploader services.Uploader
	if cfg.SnapshotsEnabled() {
		objects, err := storage.NewObjectStore(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		uploader = objects
	}
	snapshots := services.NewSnapshotJob(stats, uploader, logging)

	// Setup Router
	router := api.NewRouter(&api.Handler{
		TopPapers: topPapers,
		Stats:     stats,
		Generator: generator,
		Graph:     store,
		Logger:    logging,
	}, cfg.AdminAPIKey)

	// Setup Cron
	cronScheduler := cron.New()
	if _, err := cronScheduler.AddFunc(cfg.StatsSnapshotSchedule, snapshots.Run); err != nil {
		logging.Fatal("Invalid snapshot schedule", zap.String("schedule", cfg.StatsSnapshotSchedule), zap.Error(err))
	}
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Minute, // POST /generate schreibt eine Million Zeilen
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	<-sigs

	logging.Info("Shutting down")
	<-cronScheduler.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Error stopping server", zap.Error(err))
	}
}
