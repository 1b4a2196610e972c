// Package jobspec reads persona-driven analysis requests and shapes the
// result document.
package jobspec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://docoutline.local/jobspec.schema.json"

// ErrInvalid is returned when a job description fails schema validation.
var ErrInvalid = errors.New("invalid job spec")

type Document struct {
	Filename string `json:"filename" yaml:"filename"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
}

type Persona struct {
	Role string `json:"role" yaml:"role"`
}

type Task struct {
	Task string `json:"task" yaml:"task"`
}

// Spec is one analysis request: which documents to read, for whom, and why.
type Spec struct {
	Documents   []Document `json:"documents" yaml:"documents"`
	Persona     Persona    `json:"persona" yaml:"persona"`
	JobToBeDone Task       `json:"job_to_be_done" yaml:"job_to_be_done"`
}

// Query is the text every chunk is ranked against.
func (s *Spec) Query() string {
	return s.Persona.Role + ": " + s.JobToBeDone.Task
}

// Filenames lists the requested documents in order.
func (s *Spec) Filenames() []string {
	names := make([]string, len(s.Documents))
	for i, d := range s.Documents {
		names[i] = d.Filename
	}
	return names
}

// LoadFile reads a job description from a .json, .yaml or .yml file.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job spec: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON validates and decodes a JSON job description.
func ParseJSON(data []byte) (*Spec, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode job spec: %w", err)
	}
	return &s, nil
}

// ParseYAML converts a YAML job description to JSON and parses that.
func ParseYAML(data []byte) (*Spec, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml job spec: %w", err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml job spec: %w", err)
	}
	return ParseJSON(js)
}

var (
	printer = message.NewPrinter(language.English)

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

func validate(data []byte) error {
	sch, err := schema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := sch.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(violations(verr), "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// violations flattens a validation error tree into leaf messages prefixed
// with their JSON path.
func violations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		path := "$"
		if len(verr.InstanceLocation) > 0 {
			path = "$." + strings.Join(verr.InstanceLocation, ".")
		}
		return []string{path + ": " + verr.ErrorKind.LocalizedString(printer)}
	}
	var out []string
	for _, c := range verr.Causes {
		out = append(out, violations(c)...)
	}
	return out
}

// Metadata echoes the request alongside the result.
type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// Section is one of the selected top chunks.
type Section struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// Subsection is a sentence pulled from a top chunk.
type Subsection struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Output is the result document of an analysis run.
type Output struct {
	Metadata           Metadata     `json:"metadata"`
	ExtractedSections  []Section    `json:"extracted_sections"`
	SubsectionAnalysis []Subsection `json:"subsection_analysis"`
}

// NewOutput starts a result for s stamped with the given time.
func NewOutput(s *Spec, at time.Time) *Output {
	return &Output{
		Metadata: Metadata{
			InputDocuments:      s.Filenames(),
			Persona:             s.Persona.Role,
			JobToBeDone:         s.JobToBeDone.Task,
			ProcessingTimestamp: at.UTC().Format("2006-01-02T15:04:05Z"),
		},
		ExtractedSections:  []Section{},
		SubsectionAnalysis: []Subsection{},
	}
}

// WriteFile writes the output as indented JSON, creating parent
// directories as needed.
func (o *Output) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(o, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
