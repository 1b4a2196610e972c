// Package rank scores document chunks against a persona query, picks a
// diverse top set and pulls the most relevant sentences out of it.
package rank

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	DefaultTopN      = 5
	DefaultThreshold = 0.35
)

// Ranked is a chunk with its relevance to the query attached.
type Ranked struct {
	doctree.Chunk
	RelevanceScore float64 `json:"relevance_score"`
}

// Refined is one sentence judged relevant to the query.
type Refined struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Ranker orders chunks with a Scorer.
type Ranker struct {
	scorer Scorer
}

func NewRanker(s Scorer) *Ranker {
	return &Ranker{scorer: s}
}

// Rank scores every chunk by its section title and text together and
// returns them best first. Equal scores keep their input order.
func (r *Ranker) Rank(ctx context.Context, query string, chunks []doctree.Chunk) ([]Ranked, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.SectionTitle + ". " + c.Text
	}

	scores, err := r.scorer.Score(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("score chunks: %w", err)
	}
	if len(scores) != len(chunks) {
		return nil, fmt.Errorf("score chunks: got %d scores for %d chunks", len(scores), len(chunks))
	}

	ranked := make([]Ranked, len(chunks))
	for i, c := range chunks {
		ranked[i] = Ranked{Chunk: c, RelevanceScore: scores[i]}
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.RelevanceScore, a.RelevanceScore)
	})
	return ranked, nil
}

// SelectTop picks n chunks from a ranked list. The first pass takes the
// best chunk of each document so every document gets a say; the second
// fills what is left in rank order. The result keeps rank order within
// each pass.
func SelectTop(ranked []Ranked, n int) []Ranked {
	if n <= 0 || len(ranked) == 0 {
		return nil
	}

	top := make([]Ranked, 0, min(n, len(ranked)))
	taken := make([]bool, len(ranked))
	seenDocs := make(map[string]bool)

	for i, c := range ranked {
		if len(top) == n {
			break
		}
		if seenDocs[c.DocName] {
			continue
		}
		seenDocs[c.DocName] = true
		taken[i] = true
		top = append(top, c)
	}
	for i, c := range ranked {
		if len(top) == n {
			break
		}
		if !taken[i] {
			taken[i] = true
			top = append(top, c)
		}
	}
	return top
}

// Refine splits each chunk into sentences and keeps those scoring
// strictly above threshold.
func (r *Ranker) Refine(ctx context.Context, query string, top []Ranked, threshold float64) ([]Refined, error) {
	var out []Refined
	for _, c := range top {
		sentences := splitSentences(c.Text)
		if len(sentences) == 0 {
			continue
		}
		scores, err := r.scorer.Score(ctx, query, sentences)
		if err != nil {
			return nil, fmt.Errorf("score sentences of %s p%d: %w", c.DocName, c.PageNum, err)
		}
		for i, s := range sentences {
			if i < len(scores) && scores[i] > threshold {
				out = append(out, Refined{Document: c.DocName, RefinedText: s, PageNumber: c.PageNum})
			}
		}
	}
	return out, nil
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ". ") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
