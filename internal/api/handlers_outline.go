package api

import (
	"net/http"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// analyzeUpload runs the synchronous outline pipeline on the form's "file".
func (s *Server) analyzeUpload(w http.ResponseWriter, r *http.Request) (pipeline.Result, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return pipeline.Result{}, false
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return pipeline.Result{}, false
	}
	up, code, err := s.readUpload(files[0])
	if err != nil {
		jsonError(w, err.Error(), code)
		return pipeline.Result{}, false
	}
	return s.analyzer.Analyze(r.Context(), up.Name, up.Data), true
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analyzeUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Outline)
}

type chunksResponse struct {
	Title    string            `json:"title"`
	Outline  []doctree.Heading `json:"outline"`
	Strategy string            `json:"strategy,omitempty"`
	Chunks   []doctree.Chunk   `json:"chunks"`
}

func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analyzeUpload(w, r)
	if !ok {
		return
	}
	chunks := res.Chunks
	if chunks == nil {
		chunks = []doctree.Chunk{}
	}
	writeJSON(w, http.StatusOK, chunksResponse{
		Title:    res.Outline.Title,
		Outline:  res.Outline.Headings,
		Strategy: string(res.Strategy),
		Chunks:   chunks,
	})
}
