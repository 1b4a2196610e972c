package rank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// axisEmbedder maps texts mentioning "x" to the x axis and everything
// else to the y axis.
type axisEmbedder struct {
	inputs []string
}

func (e *axisEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.inputs = texts
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if strings.Contains(t, "x") {
			out[i] = []float32{1, 0}
		} else {
			out[i] = []float32{0, 1}
		}
	}
	return out, nil
}

func TestEmbeddingScorer_Cosine(t *testing.T) {
	e := &axisEmbedder{}
	stats := NewStats(time.Hour)
	s := NewEmbeddingScorer(e, stats)

	scores, err := s.Score(context.Background(), "x marks", []string{"box", "ball"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0] != 1 || scores[1] != 0 {
		t.Errorf("unexpected scores %v", scores)
	}
	if len(e.inputs) != 3 || e.inputs[0] != "x marks" {
		t.Errorf("query should be embedded first alongside texts, got %q", e.inputs)
	}
	if stats.Backend(BackendEmbedding).Count != 1 {
		t.Error("expected one latency sample")
	}
}

func TestEmbeddingScorer_TruncatesLongInput(t *testing.T) {
	e := &axisEmbedder{}
	long := strings.Repeat("word ", 20000)
	if _, err := NewEmbeddingScorer(e, nil).Score(context.Background(), "q", []string{long}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(strings.Fields(e.inputs[1])); n >= 20000 {
		t.Errorf("expected truncated input, got %d words", n)
	}
}

type shortEmbedder struct{}

func (shortEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return [][]float32{{1}}, nil
}

func TestEmbeddingScorer_VectorCountMismatch(t *testing.T) {
	if _, err := NewEmbeddingScorer(shortEmbedder{}, nil).Score(context.Background(), "q", []string{"a", "b"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float32{1, 1}, []float32{2, 2}); math.Abs(got-1) > 1e-9 {
		t.Errorf("parallel vectors: got %v", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{-1, 0}); got != -1 {
		t.Errorf("opposite vectors: got %v", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector: got %v", got)
	}
	if got := Cosine([]float32{1}, []float32{1, 0}); got != 0 {
		t.Errorf("dimension mismatch: got %v", got)
	}
}

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}, true},
		{&openai.APIError{HTTPStatusCode: http.StatusBadGateway}, true},
		{&openai.APIError{HTTPStatusCode: http.StatusUnauthorized}, false},
		{&openai.RequestError{HTTPStatusCode: http.StatusServiceUnavailable, Err: errors.New("down")}, true},
		{fmt.Errorf("dial: %w", errors.New("refused")), false},
	}
	for _, tt := range tests {
		if got := IsRetryable(classifyAPIError(tt.err)); got != tt.retryable {
			t.Errorf("%v: retryable=%v, want %v", tt.err, got, tt.retryable)
		}
	}
}

func TestNewOpenAIEmbedder_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder("", "", ""); err == nil {
		t.Fatal("expected error without api key")
	}
	e, err := NewOpenAIEmbedder("sk-test", "http://localhost:1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ModelInfo() != "openai-text-embedding-3-small" {
		t.Errorf("unexpected model %q", e.ModelInfo())
	}
}

func TestKeywordScorer(t *testing.T) {
	s := NewKeywordScorer(nil)
	scores, err := s.Score(context.Background(), "castle tours", []string{
		"Visit the old castle on guided castle tours.",
		"Beaches and nightlife.",
		"A castle in the hills.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0] != 1 {
		t.Errorf("best match should normalize to 1, got %v", scores[0])
	}
	if scores[1] != 0 {
		t.Errorf("non-matching text should score 0, got %v", scores[1])
	}
	if scores[2] <= 0 || scores[2] >= 1 {
		t.Errorf("partial match should score between 0 and 1, got %v", scores[2])
	}
}

func TestKeywordScorer_EmptyQuery(t *testing.T) {
	scores, err := NewKeywordScorer(nil).Score(context.Background(), "  ", []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 || scores[0] != 0 || scores[1] != 0 {
		t.Errorf("expected zero scores, got %v", scores)
	}
}

func TestNewScorer(t *testing.T) {
	s, name, err := NewScorer("", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*KeywordScorer); !ok || name != "keyword" {
		t.Errorf("expected keyword scorer, got %T %q", s, name)
	}

	s, name, err = NewScorer("sk-test", "http://localhost:1", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*EmbeddingScorer); !ok || name != "openai-text-embedding-3-small" {
		t.Errorf("expected embedding scorer, got %T %q", s, name)
	}
}
