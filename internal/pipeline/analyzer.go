// Package pipeline runs documents through parsing, outlining and chunking,
// then ranks the chunks for a persona's task.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dgallion1/docoutline/internal/cache"
	"github.com/dgallion1/docoutline/internal/chunker"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// ErrorTitle replaces the title of any document whose outline could not
// be built.
const ErrorTitle = "Error Processing Document"

// ErrorOutline is reported in place of an outline when extraction fails.
func ErrorOutline() doctree.Outline {
	return doctree.Outline{Title: ErrorTitle, Headings: []doctree.Heading{}}
}

// ErrExtractionPanic wraps a panic recovered while parsing or outlining.
var ErrExtractionPanic = errors.New("extraction panicked")

// Loader fetches a document's bytes by name.
type Loader func(ctx context.Context, name string) ([]byte, error)

// Result is the analysis of one document.
type Result struct {
	Name     string
	Outline  doctree.Outline
	Strategy outline.Strategy
	Chunks   []doctree.Chunk
	Cached   bool

	// Skipped is set when the document could not be loaded at all.
	Skipped bool
	// Err is the load or extraction failure, if any. A failed extraction
	// still yields ErrorOutline.
	Err error
}

// Analyzer turns raw documents into outlines and chunks.
type Analyzer struct {
	cache         cache.Cache
	maxConcurrent int
	log           *slog.Logger

	// inflight collapses concurrent extractions of identical content.
	inflight singleflight.Group

	parserFor func(name string) (parser.Parser, error)
}

// NewAnalyzer creates an analyzer. c may be nil to disable caching.
func NewAnalyzer(c cache.Cache, maxConcurrent int, log *slog.Logger) *Analyzer {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Analyzer{cache: c, maxConcurrent: maxConcurrent, log: log, parserFor: parser.ForFile}
}

// Analyze extracts the outline of one document and chunks its text along
// the headings. Extraction failures are logged and substituted with
// ErrorOutline rather than returned.
func (a *Analyzer) Analyze(ctx context.Context, name string, data []byte) Result {
	log := a.log.With("doc", name)
	res := Result{Name: name}

	entry, err := a.extract(ctx, name, data)
	if err != nil {
		log.Error("outline extraction failed", "error", err)
		res.Outline = ErrorOutline()
		res.Err = err
		return res
	}
	res.Outline = entry.Outline
	res.Strategy = outline.Strategy(entry.Strategy)
	res.Cached = entry.cached

	if len(res.Outline.Headings) == 0 {
		log.Info("no outline found, skipping chunking", "title", res.Outline.Title)
		return res
	}
	res.Chunks = chunker.Chunk(name, entry.Text, res.Outline.Headings)
	log.Info("document analyzed",
		"title", res.Outline.Title,
		"strategy", res.Strategy,
		"headings", len(res.Outline.Headings),
		"chunks", len(res.Chunks),
		"cached", res.Cached,
	)
	return res
}

type extraction struct {
	cache.Entry
	cached bool
}

func (a *Analyzer) extract(ctx context.Context, name string, data []byte) (extraction, error) {
	// The parser is chosen by extension, so it is part of the key.
	key := strings.ToLower(filepath.Ext(name)) + ":" + cache.Key(data)
	v, err, shared := a.inflight.Do(key, func() (any, error) {
		return a.extractOnce(ctx, key, name, data)
	})
	if err != nil {
		return extraction{}, err
	}
	if shared {
		a.log.Debug("shared in-flight extraction", "doc", name)
	}
	return v.(extraction), nil
}

func (a *Analyzer) extractOnce(ctx context.Context, key, name string, data []byte) (ext extraction, err error) {
	// A panicking parser fails this document only.
	defer func() {
		if rec := recover(); rec != nil {
			ext = extraction{}
			err = fmt.Errorf("%w: %v", ErrExtractionPanic, rec)
		}
	}()

	if a.cache != nil {
		e, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			a.log.Warn("cache lookup failed", "doc", name, "error", err)
		} else if ok {
			return extraction{Entry: *e, cached: true}, nil
		}
	}

	p, err := a.parserFor(name)
	if err != nil {
		return extraction{}, err
	}
	doc, err := p.Parse(bytes.NewReader(data), name)
	if err != nil {
		return extraction{}, fmt.Errorf("parse: %w", err)
	}
	ol, strategy, err := outline.Build(doc)
	if err != nil {
		return extraction{}, fmt.Errorf("build outline: %w", err)
	}

	entry := cache.Entry{Outline: ol, Strategy: string(strategy), Text: doc.Text}
	if a.cache != nil {
		if err := a.cache.Put(ctx, key, entry); err != nil {
			a.log.Warn("cache store failed", "doc", name, "error", err)
		}
	}
	return extraction{Entry: entry}, nil
}

// AnalyzeAll analyzes documents concurrently and returns results in input
// order. Documents the loader cannot supply are marked Skipped. Only
// context cancellation aborts the batch.
func (a *Analyzer) AnalyzeAll(ctx context.Context, names []string, load Loader) ([]Result, error) {
	results := make([]Result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := load(gctx, name)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				a.log.Warn("document unavailable, skipping", "doc", name, "error", err)
				results[i] = Result{Name: name, Skipped: true, Err: err}
				return nil
			}
			results[i] = a.Analyze(gctx, name, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
