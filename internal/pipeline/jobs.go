package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/jobspec"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusRanking   JobStatus = "ranking"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the state of one persona-driven analysis over a set of
// uploaded documents.
type Job struct {
	mu sync.Mutex

	ID   string        `json:"job_id"`
	Spec *jobspec.Spec `json:"-"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	files  map[string][]byte
	result *jobspec.Output
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocs     int      `json:"total_docs"`
	DocsProcessed int      `json:"docs_processed"`
	DocsFailed    int      `json:"docs_failed"`
	Chunks        int      `json:"chunks"`
	Errors        []string `json:"errors"`
}

// NewJob creates a queued job holding the uploaded files.
func NewJob(spec *jobspec.Spec, files map[string][]byte) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		Spec:      spec,
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{TotalDocs: len(spec.Documents)},
		CreatedAt: now,
		UpdatedAt: now,
		files:     files,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// RecordDoc counts one analyzed document and its chunks.
func (j *Job) RecordDoc(chunks int, failed bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocsProcessed++
	if failed {
		j.Progress.DocsFailed++
	}
	j.Progress.Chunks += chunks
	j.UpdatedAt = time.Now()
}

// File returns an uploaded file's bytes.
func (j *Job) File(name string) ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	data, ok := j.files[name]
	return data, ok
}

// Complete stores the result, releases the uploaded files and marks the
// job completed.
func (j *Job) Complete(out *jobspec.Output) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = out
	j.files = nil
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Fail releases the uploaded files and marks the job failed.
func (j *Job) Fail(phase, reason string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.files = nil
	j.errors = append(j.errors, reason)
	j.Progress.Errors = j.errors
	j.Status = StatusFailed
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Result returns the output once the job has completed.
func (j *Job) Result() (*jobspec.Output, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.result != nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Persona  string    `json:"persona"`
	Task     string    `json:"job_to_be_done"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)

	snap := JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: j.Progress,
	}
	snap.Progress.Errors = errs
	if j.Spec != nil {
		snap.Persona = j.Spec.Persona.Role
		snap.Task = j.Spec.JobToBeDone.Task
	}
	return snap
}
