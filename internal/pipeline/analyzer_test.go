package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/cache"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

const barcelonaMD = "# Barcelona\n\nBeaches and nightlife. Clubs open late.\n\n## Food\n\nTapas are cheap. Try paella.\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mapLoader(files map[string]string) Loader {
	return func(_ context.Context, name string) ([]byte, error) {
		data, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("open %s: %w", name, os.ErrNotExist)
		}
		return []byte(data), nil
	}
}

func TestAnalyze_OutlineAndChunks(t *testing.T) {
	a := NewAnalyzer(nil, 1, discardLogger())
	res := a.Analyze(context.Background(), "guide.md", []byte(barcelonaMD))

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Outline.Title != "Barcelona" {
		t.Errorf("expected title %q, got %q", "Barcelona", res.Outline.Title)
	}
	if res.Strategy != outline.StrategyTOC {
		t.Errorf("expected toc strategy, got %q", res.Strategy)
	}
	if len(res.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(res.Chunks), res.Chunks)
	}
	if res.Chunks[0].SectionTitle != "Barcelona" || res.Chunks[0].Text != "Beaches and nightlife. Clubs open late." {
		t.Errorf("unexpected first chunk %+v", res.Chunks[0])
	}
	if res.Chunks[1].SectionTitle != "Food" || res.Chunks[1].DocName != "guide.md" || res.Chunks[1].PageNum != 1 {
		t.Errorf("unexpected second chunk %+v", res.Chunks[1])
	}
}

func TestAnalyze_UsesCache(t *testing.T) {
	c := cache.NewMemory(time.Hour)
	a := NewAnalyzer(c, 1, discardLogger())
	ctx := context.Background()

	first := a.Analyze(ctx, "guide.md", []byte(barcelonaMD))
	if first.Cached {
		t.Fatal("first analysis should not be cached")
	}
	second := a.Analyze(ctx, "guide.md", []byte(barcelonaMD))
	if !second.Cached {
		t.Fatal("second analysis should hit the cache")
	}
	if second.Strategy != first.Strategy || len(second.Chunks) != len(first.Chunks) {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
}

func TestAnalyze_CacheKeyIncludesExtension(t *testing.T) {
	a := NewAnalyzer(cache.NewMemory(time.Hour), 1, discardLogger())
	ctx := context.Background()

	a.Analyze(ctx, "guide.md", []byte(barcelonaMD))
	res := a.Analyze(ctx, "guide.html", []byte(barcelonaMD))
	if res.Cached {
		t.Error("same bytes under a different parser must not hit the cache")
	}
}

func TestAnalyze_ExtractionFailureYieldsErrorOutline(t *testing.T) {
	a := NewAnalyzer(cache.NewMemory(time.Hour), 1, discardLogger())

	for _, name := range []string{"broken.pdf", "data.csv"} {
		res := a.Analyze(context.Background(), name, []byte("not a document"))
		if res.Err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if res.Outline.Title != ErrorTitle {
			t.Errorf("%s: expected error title, got %q", name, res.Outline.Title)
		}
		if res.Outline.Headings == nil || len(res.Outline.Headings) != 0 {
			t.Errorf("%s: expected empty non-nil outline, got %+v", name, res.Outline.Headings)
		}
		if len(res.Chunks) != 0 {
			t.Errorf("%s: expected no chunks", name)
		}
	}

	res := a.Analyze(context.Background(), "broken.pdf", []byte("not a document"))
	if !errors.Is(res.Err, parser.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", res.Err)
	}
}

type panickingParser struct{}

func (panickingParser) Parse(io.Reader, string) (*doctree.Document, error) {
	panic("unexpected object type")
}

func TestAnalyze_ParserPanicYieldsErrorOutline(t *testing.T) {
	a := NewAnalyzer(cache.NewMemory(time.Hour), 2, discardLogger())
	a.parserFor = func(string) (parser.Parser, error) { return panickingParser{}, nil }

	results, err := a.AnalyzeAll(context.Background(), []string{"bad.pdf", "worse.pdf"}, mapLoader(map[string]string{
		"bad.pdf":   "first",
		"worse.pdf": "second",
	}))
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	for _, res := range results {
		if !errors.Is(res.Err, ErrExtractionPanic) {
			t.Errorf("%s: expected ErrExtractionPanic, got %v", res.Name, res.Err)
		}
		if res.Outline.Title != ErrorTitle || len(res.Outline.Headings) != 0 {
			t.Errorf("%s: expected error outline, got %+v", res.Name, res.Outline)
		}
	}

	// The analyzer stays usable afterwards.
	a.parserFor = parser.ForFile
	if res := a.Analyze(context.Background(), "guide.md", []byte(barcelonaMD)); res.Err != nil {
		t.Errorf("unexpected error after recovered panic: %v", res.Err)
	}
}

func TestAnalyze_NoHeadingsSkipsChunking(t *testing.T) {
	a := NewAnalyzer(nil, 1, discardLogger())
	res := a.Analyze(context.Background(), "plain.md", []byte("Just text.\n\nMore text.\n"))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Outline.Headings) != 0 || res.Chunks != nil {
		t.Errorf("expected no headings and no chunks, got %+v", res)
	}
	if res.Outline.Title != outline.UntitledDocument {
		t.Errorf("expected untitled, got %q", res.Outline.Title)
	}
}

func TestAnalyzeAll_KeepsOrderAndSkipsMissing(t *testing.T) {
	files := map[string]string{
		"a.md": "# Alpha Section\n\nalpha body\n",
		"c.md": "# Gamma Section\n\ngamma body\n",
	}
	a := NewAnalyzer(nil, 2, discardLogger())
	results, err := a.AnalyzeAll(context.Background(), []string{"a.md", "b.md", "c.md"}, mapLoader(files))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Name != "a.md" || results[2].Name != "c.md" {
		t.Errorf("results out of order: %q, %q", results[0].Name, results[2].Name)
	}
	if !results[1].Skipped || !errors.Is(results[1].Err, os.ErrNotExist) {
		t.Errorf("expected b.md skipped, got %+v", results[1])
	}
	if got := Chunks(results); len(got) != 2 || got[0].DocName != "a.md" || got[1].DocName != "c.md" {
		t.Errorf("unexpected chunks %+v", got)
	}
}

func TestAnalyzeAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAnalyzer(nil, 1, discardLogger())
	if _, err := a.AnalyzeAll(ctx, []string{"a.md"}, mapLoader(nil)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
