package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/jobspec"
	"github.com/dgallion1/docoutline/internal/rank"
)

// Runner answers a job spec: analyze every document, rank the chunks
// against the persona's query, keep the top sections and their most
// relevant sentences.
type Runner struct {
	analyzer  *Analyzer
	ranker    *rank.Ranker
	topN      int
	threshold float64
	log       *slog.Logger
	now       func() time.Time
}

// NewRunner creates a runner. scorer failures that are transient are
// retried.
func NewRunner(a *Analyzer, scorer rank.Scorer, topN int, threshold float64, log *slog.Logger) *Runner {
	if topN <= 0 {
		topN = rank.DefaultTopN
	}
	return &Runner{
		analyzer:  a,
		ranker:    rank.NewRanker(WithRetry(scorer, log)),
		topN:      topN,
		threshold: threshold,
		log:       log,
		now:       time.Now,
	}
}

// Run processes spec end to end.
func (r *Runner) Run(ctx context.Context, spec *jobspec.Spec, load Loader) (*jobspec.Output, error) {
	results, err := r.Collect(ctx, spec.Filenames(), load)
	if err != nil {
		return nil, err
	}
	return r.Rank(ctx, spec, Chunks(results))
}

// Collect analyzes the named documents.
func (r *Runner) Collect(ctx context.Context, names []string, load Loader) ([]Result, error) {
	return r.analyzer.AnalyzeAll(ctx, names, load)
}

// Chunks concatenates the chunks of all results in document order.
func Chunks(results []Result) []doctree.Chunk {
	var all []doctree.Chunk
	for _, res := range results {
		all = append(all, res.Chunks...)
	}
	return all
}

// Rank scores chunks against the spec's query and assembles the output.
func (r *Runner) Rank(ctx context.Context, spec *jobspec.Spec, chunks []doctree.Chunk) (*jobspec.Output, error) {
	out := jobspec.NewOutput(spec, r.now())
	if len(chunks) == 0 {
		r.log.Warn("no content could be extracted from the documents")
		return out, nil
	}

	query := spec.Query()
	ranked, err := r.ranker.Rank(ctx, query, chunks)
	if err != nil {
		return nil, err
	}
	top := rank.SelectTop(ranked, r.topN)

	refined, err := r.ranker.Refine(ctx, query, top, r.threshold)
	if err != nil {
		return nil, err
	}

	for i, c := range top {
		out.ExtractedSections = append(out.ExtractedSections, jobspec.Section{
			Document:       c.DocName,
			SectionTitle:   c.SectionTitle,
			ImportanceRank: i + 1,
			PageNumber:     c.PageNum,
		})
	}
	for _, s := range refined {
		out.SubsectionAnalysis = append(out.SubsectionAnalysis, jobspec.Subsection{
			Document:    s.Document,
			RefinedText: s.RefinedText,
			PageNumber:  s.PageNumber,
		})
	}
	r.log.Info("ranking complete",
		"chunks", len(chunks),
		"sections", len(out.ExtractedSections),
		"subsections", len(out.SubsectionAnalysis),
	)
	return out, nil
}
