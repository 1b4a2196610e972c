package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docoutline/internal/jobspec"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := slices.Concat(r.MultipartForm.File["files"], r.MultipartForm.File["files[]"])
	if len(headers) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	files := make(map[string][]byte, len(headers))
	var docs []jobspec.Document
	for _, fh := range headers {
		up, code, err := s.readUpload(fh)
		if err != nil {
			jsonError(w, fmt.Sprintf("%s: %s", sanitizeFilename(fh.Filename), err), code)
			return
		}
		if _, dup := files[up.Name]; dup {
			jsonError(w, fmt.Sprintf("duplicate filename: %s", up.Name), http.StatusBadRequest)
			return
		}
		files[up.Name] = up.Data
		docs = append(docs, jobspec.Document{Filename: up.Name})
	}

	// Route the form through the same schema as file-based job specs.
	raw, err := json.Marshal(jobspec.Spec{
		Documents:   docs,
		Persona:     jobspec.Persona{Role: r.FormValue("persona")},
		JobToBeDone: jobspec.Task{Task: r.FormValue("task")},
	})
	if err != nil {
		jsonError(w, "failed to encode job", http.StatusInternalServerError)
		return
	}
	spec, err := jobspec.ParseJSON(raw)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, jobspec.ErrInvalid) {
			code = http.StatusBadRequest
		}
		jsonError(w, err.Error(), code)
		return
	}

	job := pipeline.NewJob(spec, files)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     job.ID,
		"status":     pipeline.StatusQueued,
		"documents":  spec.Filenames(),
		"poll_url":   fmt.Sprintf("/api/analyze/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/analyze/%s/result", job.ID),
	})
}

func (s *Server) handleAnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleAnalyzeResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	out, ok := job.Result()
	if !ok {
		snap := job.Snapshot()
		if snap.Status == pipeline.StatusFailed {
			writeJSON(w, http.StatusUnprocessableEntity, snap)
			return
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job not finished",
			"status": snap.Status,
		})
		return
	}
	writeJSON(w, http.StatusOK, out)
}
