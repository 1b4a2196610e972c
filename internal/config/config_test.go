package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "TOP_SECTIONS", "SIMILARITY_THRESHOLD", "WORKER_COUNT", "CACHE_TTL", "CACHE_ENABLED", "REDIS_URL"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.TopSections != 5 || cfg.SimilarityThreshold != 0.35 {
		t.Errorf("unexpected ranking defaults: top=%d threshold=%v", cfg.TopSections, cfg.SimilarityThreshold)
	}
	if cfg.WorkerCount != 2 || cfg.CacheTTL != 24*time.Hour || !cfg.CacheEnabled {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TOP_SECTIONS", "8")
	t.Setenv("SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("JOB_TTL", "nonsense")

	cfg := Load()
	if cfg.TopSections != 8 {
		t.Errorf("expected 8 top sections, got %d", cfg.TopSections)
	}
	if cfg.SimilarityThreshold != 0.5 {
		t.Errorf("expected threshold 0.5, got %v", cfg.SimilarityThreshold)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("non-positive worker count should clamp to default, got %d", cfg.WorkerCount)
	}
	if cfg.CacheEnabled {
		t.Error("expected cache disabled")
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("unparseable duration should fall back, got %v", cfg.JobTTL)
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("expected error without api key")
	}
	if err := (Config{APIKey: "k", SimilarityThreshold: 1.5}).Validate(); err == nil {
		t.Error("expected error for threshold above 1")
	}
	if err := (Config{APIKey: "k", SimilarityThreshold: 0.35}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
