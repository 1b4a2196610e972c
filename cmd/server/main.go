package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/cache"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/rank"
)

func main() {
	_ = godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize backends.
	store, err := cache.Open(ctx, cfg.CacheEnabled, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		log.Error("cache unavailable", "error", err)
		os.Exit(1)
	}
	stats := rank.NewStats(time.Hour)
	scorer, scorerName, err := rank.NewScorer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, stats)
	if err != nil {
		log.Error("scorer unavailable", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	analyzer := pipeline.NewAnalyzer(store, cfg.MaxConcurrentDocs, log)
	runner := pipeline.NewRunner(analyzer, scorer, cfg.TopSections, cfg.SimilarityThreshold, log)
	orch := pipeline.NewOrchestrator(runner, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, analyzer, scorerName, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if store != nil {
			store.Close()
		}
	}()

	log.Info("starting docoutline", "port", cfg.Port, "scorer", scorerName, "cache", cfg.CacheEnabled)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
