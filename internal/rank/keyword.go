package rank

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
)

// KeywordScorer ranks texts with bleve's term scoring over a throwaway
// in-memory index. It needs no network access and serves as the default
// when no embedding API is configured. Scores are normalized so the best
// hit is 1 and texts without a matching term score 0.
type KeywordScorer struct {
	stats *Stats
}

// NewKeywordScorer creates a keyword scorer. stats may be nil.
func NewKeywordScorer(stats *Stats) *KeywordScorer {
	return &KeywordScorer{stats: stats}
}

type keywordDoc struct {
	Content string `json:"content"`
}

func (s *KeywordScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	scores := make([]float64, len(texts))
	if len(texts) == 0 || strings.TrimSpace(query) == "" {
		return scores, nil
	}

	start := time.Now()
	err := s.search(ctx, query, texts, scores)
	s.stats.Record(BackendKeyword, time.Since(start).Milliseconds(), err)
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// search fills scores with normalized hit scores.
func (s *KeywordScorer) search(ctx context.Context, query string, texts []string, scores []float64) error {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("create keyword index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for i, t := range texts {
		if err := batch.Index(strconv.Itoa(i), keywordDoc{Content: t}); err != nil {
			return fmt.Errorf("index text %d: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("index batch: %w", err)
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = len(texts)
	res, err := index.SearchInContext(ctx, req)
	if err != nil {
		return fmt.Errorf("keyword search: %w", err)
	}
	if len(res.Hits) == 0 || res.MaxScore <= 0 {
		return nil
	}

	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(scores) {
			continue
		}
		scores[i] = hit.Score / res.MaxScore
	}
	return nil
}
