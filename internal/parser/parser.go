package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

var (
	// ErrUnsupported is returned for file types no parser handles.
	ErrUnsupported = errors.New("unsupported file extension")
	// ErrCorrupt wraps decoding failures of a document's binary format.
	ErrCorrupt = errors.New("corrupt document")
)

// Parser converts raw document bytes into positioned, styled text.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// blockBuilder assembles a Document for formats whose headings are marked
// up explicitly. Headings become the built-in table of contents and all
// blocks, headings included, form the linearized text.
type blockBuilder struct {
	doc    doctree.Document
	blocks []string
}

func newBlockBuilder(filename string) *blockBuilder {
	return &blockBuilder{doc: doctree.Document{Name: filename}}
}

func (b *blockBuilder) heading(level int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.doc.TOC = append(b.doc.TOC, doctree.TOCEntry{Depth: level, Title: text, Page: 1})
	b.blocks = append(b.blocks, text)
}

func (b *blockBuilder) text(text string) {
	if text = strings.TrimSpace(text); text != "" {
		b.blocks = append(b.blocks, text)
	}
}

func (b *blockBuilder) build() *doctree.Document {
	b.doc.Text = strings.Join(b.blocks, "\n")
	return &b.doc
}
