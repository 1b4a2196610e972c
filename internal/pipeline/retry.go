package pipeline

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/docoutline/internal/rank"
)

const MaxRetries = 3

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// retryScorer retries transient scorer failures with jittered backoff.
type retryScorer struct {
	next    rank.Scorer
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

// WithRetry wraps s so rank.RetryableError failures are retried up to
// MaxRetries times.
func WithRetry(s rank.Scorer, log *slog.Logger) rank.Scorer {
	return &retryScorer{next: s, log: log, backoff: Backoff}
}

func (r *retryScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	var (
		scores  []float64
		lastErr error
	)
	for attempt := range MaxRetries {
		scores, lastErr = r.next.Score(ctx, query, texts)
		if lastErr == nil || !rank.IsRetryable(lastErr) {
			return scores, lastErr
		}
		r.log.Warn("retryable scoring error", "attempt", attempt, "texts", len(texts), "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
