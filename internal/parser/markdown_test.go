package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func TestMarkdownParser_HeadingsBecomeTOC(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Name != "doc.md" {
		t.Errorf("expected name %q, got %q", "doc.md", doc.Name)
	}
	if doc.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", doc.Title)
	}

	want := []doctree.TOCEntry{
		{Depth: 1, Title: "Title", Page: 1},
		{Depth: 2, Title: "Section A", Page: 1},
		{Depth: 3, Title: "Subsection A1", Page: 1},
		{Depth: 2, Title: "Section B", Page: 1},
	}
	if len(doc.TOC) != len(want) {
		t.Fatalf("expected %d TOC entries, got %d: %+v", len(want), len(doc.TOC), doc.TOC)
	}
	for i := range want {
		if doc.TOC[i] != want[i] {
			t.Errorf("TOC[%d] = %+v, want %+v", i, doc.TOC[i], want[i])
		}
	}

	wantText := "Title\nIntro text.\nSection A\nSection A content.\nSubsection A1\nSubsection A1 content.\nSection B\nSection B content."
	if doc.Text != wantText {
		t.Errorf("text mismatch:\n got %q\nwant %q", doc.Text, wantText)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("expected no positioned pages, got %d", len(doc.Pages))
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.TOC) != 0 {
		t.Errorf("expected empty TOC, got %+v", doc.TOC)
	}
	if doc.Title != "" {
		t.Errorf("expected no title, got %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Just some plain text.") {
		t.Errorf("expected text to contain first paragraph, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Another paragraph here.") {
		t.Errorf("expected text to contain second paragraph, got %q", doc.Text)
	}
}

func TestMarkdownParser_CodeBlocksAndLists(t *testing.T) {
	input := "# API Reference\n\n## Endpoints\n\n```\nGET /api/users\nPOST /api/users\n```\n\n- first item\n- second item\n"

	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(doc.Text, "GET /api/users") {
		t.Errorf("expected code block content in text, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "first item\nsecond item") {
		t.Errorf("expected list items on separate lines, got %q", doc.Text)
	}
}

func TestMarkdownParser_FirstH1IsTitle(t *testing.T) {
	input := "## Preface\n\n# Real Title\n\n# Second\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "t.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Real Title" {
		t.Errorf("expected %q, got %q", "Real Title", doc.Title)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.TOC) != 0 || doc.Text != "" {
		t.Errorf("expected empty document, got %+v", doc)
	}
}
