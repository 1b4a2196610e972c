package parser

import (
	"testing"

	pdflib "github.com/ledongthuc/pdf"
)

// glyphs lays out s one character per 6pt starting at x.
func glyphs(s string, x, y, size float64, font string) []pdflib.Text {
	var out []pdflib.Text
	for _, r := range s {
		out = append(out, pdflib.Text{Font: font, FontSize: size, X: x, Y: y, W: 6, S: string(r)})
		x += 6
	}
	return out
}

func TestBuildLines_GroupsRowsTopDown(t *testing.T) {
	var texts []pdflib.Text
	texts = append(texts, glyphs("body", 72, 600, 10, "Times-Roman")...)
	texts = append(texts, glyphs("Head", 72, 700, 16, "Times-Bold")...)

	lines := buildLines(texts, 800)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text() != "Head" || lines[1].Text() != "body" {
		t.Errorf("unexpected order: %q, %q", lines[0].Text(), lines[1].Text())
	}
	if lines[0].Y0 != 84 {
		t.Errorf("expected Y0 84, got %v", lines[0].Y0)
	}
	if !lines[0].Spans[0].Bold || lines[1].Spans[0].Bold {
		t.Error("bold flag should follow the font name")
	}
}

func TestBuildLines_BaselineTolerance(t *testing.T) {
	var texts []pdflib.Text
	texts = append(texts, glyphs("ab", 72, 500, 10, "F")...)
	texts = append(texts, glyphs("cd", 84, 498, 10, "F")...)

	lines := buildLines(texts, 792)
	if len(lines) != 1 {
		t.Fatalf("expected glyphs within tolerance to share a line, got %d lines", len(lines))
	}
	if got := lines[0].Text(); got != "abcd" {
		t.Errorf("expected %q, got %q", "abcd", got)
	}
}

func TestBuildLines_SpansSplitOnFontChange(t *testing.T) {
	var texts []pdflib.Text
	texts = append(texts, glyphs("Bold", 72, 500, 12, "Helvetica-Bold")...)
	texts = append(texts, glyphs("plain", 72+4*6+10, 500, 12, "Helvetica")...)

	lines := buildLines(texts, 792)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	spans := lines[0].Spans
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != "Bold" || spans[1].Text != " plain" {
		t.Errorf("unexpected spans %q, %q", spans[0].Text, spans[1].Text)
	}
	if lines[0].Text() != "Bold plain" {
		t.Errorf("unexpected line text %q", lines[0].Text())
	}
}

func TestBuildLines_WordGapInsertsSpace(t *testing.T) {
	var texts []pdflib.Text
	texts = append(texts, glyphs("two", 72, 400, 10, "F")...)
	texts = append(texts, glyphs("words", 72+3*6+5, 400, 10, "F")...)

	lines := buildLines(texts, 792)
	if got := lines[0].Text(); got != "two words" {
		t.Errorf("expected %q, got %q", "two words", got)
	}
}

func TestBuildLines_Empty(t *testing.T) {
	if lines := buildLines(nil, 792); lines != nil {
		t.Errorf("expected nil, got %+v", lines)
	}
	if lines := buildLines([]pdflib.Text{{S: "\n"}}, 792); lines != nil {
		t.Errorf("expected nil for newline-only content, got %+v", lines)
	}
}
