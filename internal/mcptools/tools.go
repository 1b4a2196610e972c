// Package mcptools exposes document outlining and ranking as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/jobspec"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// Tools holds the pipeline the MCP handlers run against.
type Tools struct {
	analyzer *pipeline.Analyzer
	runner   *pipeline.Runner
	maxBytes int64
	log      *slog.Logger
}

// New creates the tool set. Files larger than maxBytes are refused.
func New(analyzer *pipeline.Analyzer, runner *pipeline.Runner, maxBytes int64, log *slog.Logger) *Tools {
	return &Tools{analyzer: analyzer, runner: runner, maxBytes: maxBytes, log: log}
}

// DocumentInput names a document on the local filesystem.
type DocumentInput struct {
	Path string `json:"path" jsonschema:"Path to a PDF, Markdown, HTML or DOCX file"`
}

// OutlineOutput is the result of extract_outline.
type OutlineOutput struct {
	Title    string            `json:"title"`
	Outline  []doctree.Heading `json:"outline"`
	Strategy string            `json:"strategy,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// ChunksOutput is the result of chunk_document.
type ChunksOutput struct {
	Title    string          `json:"title"`
	Strategy string          `json:"strategy,omitempty"`
	Chunks   []doctree.Chunk `json:"chunks"`
	Error    string          `json:"error,omitempty"`
}

// RankInput describes a collection to rank against a persona's task.
type RankInput struct {
	InputDir  string   `json:"input_dir" jsonschema:"Directory holding the documents"`
	Documents []string `json:"documents" jsonschema:"Filenames relative to input_dir"`
	Persona   string   `json:"persona" jsonschema:"Role of the reader, e.g. Travel Planner"`
	Task      string   `json:"task" jsonschema:"What the reader needs to get done"`
}

// Register adds every tool to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "extract_outline",
			Description: "Extracts a document's title and H1-H3 heading outline with page numbers. Uses the embedded table of contents when present and falls back to font-size analysis.",
		},
		t.ExtractOutline,
	)
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "chunk_document",
			Description: "Splits a document into sections, one per outline heading, each with its page number and body text.",
		},
		t.ChunkDocument,
	)
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "rank_sections",
			Description: "Ranks the sections of a document collection by relevance to a persona and task, returning the top sections and their most relevant sentences.",
		},
		t.RankSections,
	)
}

// ExtractOutline handles extract_outline.
func (t *Tools) ExtractOutline(ctx context.Context, req *mcp.CallToolRequest, in DocumentInput) (*mcp.CallToolResult, OutlineOutput, error) {
	res, err := t.analyzePath(ctx, in.Path)
	if err != nil {
		return nil, OutlineOutput{}, err
	}
	out := OutlineOutput{
		Title:    res.Outline.Title,
		Outline:  res.Outline.Headings,
		Strategy: string(res.Strategy),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return nil, out, nil
}

// ChunkDocument handles chunk_document.
func (t *Tools) ChunkDocument(ctx context.Context, req *mcp.CallToolRequest, in DocumentInput) (*mcp.CallToolResult, ChunksOutput, error) {
	res, err := t.analyzePath(ctx, in.Path)
	if err != nil {
		return nil, ChunksOutput{}, err
	}
	out := ChunksOutput{
		Title:    res.Outline.Title,
		Strategy: string(res.Strategy),
		Chunks:   res.Chunks,
	}
	if out.Chunks == nil {
		out.Chunks = []doctree.Chunk{}
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return nil, out, nil
}

// RankSections handles rank_sections.
func (t *Tools) RankSections(ctx context.Context, req *mcp.CallToolRequest, in RankInput) (*mcp.CallToolResult, *jobspec.Output, error) {
	docs := make([]jobspec.Document, len(in.Documents))
	for i, name := range in.Documents {
		docs[i] = jobspec.Document{Filename: name}
	}
	raw, err := json.Marshal(jobspec.Spec{
		Documents:   docs,
		Persona:     jobspec.Persona{Role: in.Persona},
		JobToBeDone: jobspec.Task{Task: in.Task},
	})
	if err != nil {
		return nil, nil, err
	}
	spec, err := jobspec.ParseJSON(raw)
	if err != nil {
		return nil, nil, err
	}

	out, err := t.runner.Run(ctx, spec, pipeline.DirLoader(in.InputDir))
	if err != nil {
		return nil, nil, fmt.Errorf("rank sections: %w", err)
	}
	return nil, out, nil
}

func (t *Tools) analyzePath(ctx context.Context, path string) (pipeline.Result, error) {
	if path == "" {
		return pipeline.Result{}, errors.New("path is required")
	}
	if !parser.IsSupportedExtension(path) {
		return pipeline.Result{}, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return pipeline.Result{}, err
	}
	if t.maxBytes > 0 && info.Size() > t.maxBytes {
		return pipeline.Result{}, fmt.Errorf("file exceeds max size (%d bytes)", t.maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Result{}, err
	}

	t.log.Debug("analyzing document", "path", path, "bytes", len(data))
	return t.analyzer.Analyze(ctx, filepath.Base(path), data), nil
}
