// Command mcp serves the outline, chunking and ranking tools over MCP stdio.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dgallion1/docoutline/internal/cache"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/mcptools"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/rank"
)

const (
	serverName = "docoutline"
	version    = "0.1.0"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("%s version %s\n", serverName, version)
		os.Exit(0)
	}

	_ = godotenv.Load()
	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	store, err := cache.Open(ctx, cfg.CacheEnabled, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		log.Error("cache unavailable", "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	}
	scorer, scorerName, err := rank.NewScorer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, nil)
	if err != nil {
		log.Error("scorer unavailable", "error", err)
		os.Exit(1)
	}

	analyzer := pipeline.NewAnalyzer(store, cfg.MaxConcurrentDocs, log)
	runner := pipeline.NewRunner(analyzer, scorer, cfg.TopSections, cfg.SimilarityThreshold, log)

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	mcptools.New(analyzer, runner, cfg.MaxUploadBytes, log).Register(server)

	log.Info("mcp server ready", "version", version, "scorer", scorerName)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
