package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Scoring. Without an OpenAI key chunks are ranked by keyword relevance.
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	EmbeddingModel      string
	TopSections         int
	SimilarityThreshold float64

	// Worker pool
	WorkerCount       int
	MaxQueueSize      int
	MaxConcurrentDocs int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Analysis cache. REDIS_URL selects Redis over the in-process cache.
	CacheEnabled bool
	RedisURL     string
	CacheTTL     time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCOUTLINE_API_KEY"),

		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		EmbeddingModel:      envOr("EMBEDDING_MODEL", "text-embedding-3-small"),
		TopSections:         envInt("TOP_SECTIONS", 5),
		SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", 0.35),

		WorkerCount:       envInt("WORKER_COUNT", 2),
		MaxQueueSize:      envInt("MAX_QUEUE_SIZE", 50),
		MaxConcurrentDocs: envInt("MAX_CONCURRENT_DOCS", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		CacheEnabled: envBool("CACHE_ENABLED", true),
		RedisURL:     os.Getenv("REDIS_URL"),
		CacheTTL:     envDuration("CACHE_TTL", 24*time.Hour),
	}

	if cfg.TopSections <= 0 {
		cfg.TopSections = 5
	}
	if cfg.SimilarityThreshold < 0 {
		cfg.SimilarityThreshold = 0.35
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxConcurrentDocs <= 0 {
		cfg.MaxConcurrentDocs = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}

	return cfg
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCOUTLINE_API_KEY is required")
	}
	if c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be at most 1, got %v", c.SimilarityThreshold)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
