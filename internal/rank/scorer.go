package rank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dgallion1/docoutline/internal/chunker"
)

// maxInputTokens keeps every text under the embedding model's input limit.
const maxInputTokens = 8000

// Scorer rates how relevant each text is to a query. Scores are comparable
// within one call; higher is more relevant.
type Scorer interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingScorer scores texts by cosine similarity between their
// embeddings and the query's.
type EmbeddingScorer struct {
	embedder Embedder
	stats    *Stats
}

// NewEmbeddingScorer wraps an Embedder. stats may be nil.
func NewEmbeddingScorer(e Embedder, stats *Stats) *EmbeddingScorer {
	return &EmbeddingScorer{embedder: e, stats: stats}
}

func (s *EmbeddingScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, 0, len(texts)+1)
	inputs = append(inputs, chunker.TruncateTokens(query, maxInputTokens))
	for _, t := range texts {
		inputs = append(inputs, chunker.TruncateTokens(t, maxInputTokens))
	}

	start := time.Now()
	vecs, err := s.embedder.Embed(ctx, inputs)
	s.stats.Record(BackendEmbedding, time.Since(start).Milliseconds(), err)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}
	if len(vecs) != len(inputs) {
		return nil, fmt.Errorf("embed texts: got %d vectors for %d inputs", len(vecs), len(inputs))
	}

	scores := make([]float64, len(texts))
	for i := range texts {
		scores[i] = Cosine(vecs[0], vecs[i+1])
	}
	return scores, nil
}

// Cosine returns the cosine similarity of two vectors, or 0 when either
// has zero length or their dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// RetryableError indicates a transient scoring failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
