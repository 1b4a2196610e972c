// Command analyze ranks the sections of a document collection for the
// persona and task described in a job spec, writing the result as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docoutline/internal/cache"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/jobspec"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/rank"
)

func main() {
	input := flag.String("input", "", "job spec file (.json, .yaml or .yml)")
	pdfs := flag.String("pdfs", "", "directory holding the documents (default: the input file's directory)")
	output := flag.String("output", filepath.Join("out", "output.json"), "where to write the result")
	flag.Parse()

	_ = godotenv.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*input, *pdfs, *output, log); err != nil {
		log.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(input, dir, output string, log *slog.Logger) error {
	if input == "" {
		return fmt.Errorf("-input is required")
	}
	start := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	spec, err := jobspec.LoadFile(input)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = filepath.Dir(input)
	}

	cfg := config.Load()
	store, err := cache.Open(ctx, cfg.CacheEnabled, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	scorer, scorerName, err := rank.NewScorer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, nil)
	if err != nil {
		return err
	}

	analyzer := pipeline.NewAnalyzer(store, cfg.MaxConcurrentDocs, log)
	runner := pipeline.NewRunner(analyzer, scorer, cfg.TopSections, cfg.SimilarityThreshold, log)

	log.Info("analyzing collection", "documents", len(spec.Documents), "dir", dir, "scorer", scorerName)
	out, err := runner.Run(ctx, spec, pipeline.DirLoader(dir))
	if err != nil {
		return err
	}
	if err := out.WriteFile(output); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d sections) in %.2fs\n", output, len(out.ExtractedSections), time.Since(start).Seconds())
	return nil
}
