package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Worker processes a single analysis job.
type Worker struct {
	runner *Runner
	log    *slog.Logger
}

func NewWorker(runner *Runner, log *slog.Logger) *Worker {
	return &Worker{runner: runner, log: log}
}

// Process runs the full analysis for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	// Phase 1: Parse, outline and chunk every document.
	job.SetStatus(StatusParsing, "parsing")
	load := func(_ context.Context, name string) ([]byte, error) {
		data, ok := job.File(name)
		if !ok {
			return nil, fmt.Errorf("file %q was not uploaded", name)
		}
		return data, nil
	}
	results, err := w.runner.Collect(ctx, job.Spec.Filenames(), load)
	if err != nil {
		log.Error("analysis aborted", "error", err)
		job.Fail("parsing", err.Error())
		return
	}
	for _, res := range results {
		failed := res.Err != nil
		job.RecordDoc(len(res.Chunks), failed)
		if failed {
			job.AddError(fmt.Sprintf("%s: %s", res.Name, res.Err))
		}
	}

	// Phase 2: Rank chunks against the persona's task.
	job.SetStatus(StatusRanking, "ranking")
	out, err := w.runner.Rank(ctx, job.Spec, Chunks(results))
	if err != nil {
		log.Error("ranking failed", "error", err)
		job.Fail("ranking", fmt.Sprintf("rank: %s", err))
		return
	}

	job.Complete(out)
	log.Info("job complete", "sections", len(out.ExtractedSections))
}
