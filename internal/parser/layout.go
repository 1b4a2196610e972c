package parser

import (
	"math"
	"slices"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	// rowTolerance is how far apart two baselines may be and still share a line.
	rowTolerance = 3.0
	// wordSpaceRatio is the horizontal gap, as a fraction of font size,
	// that separates two words.
	wordSpaceRatio = 0.3
)

type row struct {
	baseline float64
	glyphs   []pdflib.Text
}

// buildLines groups positioned glyphs into lines of styled spans, top to
// bottom. PDF coordinates grow upward; Line.Y0 is measured from the top.
func buildLines(texts []pdflib.Text, pageHeight float64) []doctree.Line {
	glyphs := make([]pdflib.Text, 0, len(texts))
	for _, t := range texts {
		if t.S == "" || t.S == "\n" {
			continue
		}
		t.FontSize = math.Abs(t.FontSize)
		glyphs = append(glyphs, t)
	}
	if len(glyphs) == 0 {
		return nil
	}

	slices.SortStableFunc(glyphs, func(a, b pdflib.Text) int {
		switch {
		case a.Y > b.Y:
			return -1
		case a.Y < b.Y:
			return 1
		}
		return 0
	})

	var rows []row
	for _, g := range glyphs {
		if n := len(rows); n > 0 && math.Abs(rows[n-1].baseline-g.Y) <= rowTolerance {
			rows[n-1].glyphs = append(rows[n-1].glyphs, g)
			continue
		}
		rows = append(rows, row{baseline: g.Y, glyphs: []pdflib.Text{g}})
	}

	lines := make([]doctree.Line, 0, len(rows))
	for _, r := range rows {
		if line, ok := r.line(pageHeight); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func (r row) line(pageHeight float64) (doctree.Line, bool) {
	slices.SortStableFunc(r.glyphs, func(a, b pdflib.Text) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})

	var (
		spans []doctree.Span
		sb    strings.Builder
		cur   pdflib.Text
		top   = math.Inf(-1)
		right float64
	)
	flush := func() {
		if sb.Len() > 0 {
			spans = append(spans, doctree.NewSpan(sb.String(), cur.FontSize, cur.Font))
		}
		sb.Reset()
	}

	for i, g := range r.glyphs {
		top = max(top, g.Y+g.FontSize)
		gap := g.X - right
		wordBreak := i > 0 && gap > wordSpaceRatio*g.FontSize

		if i == 0 || g.Font != cur.Font || g.FontSize != cur.FontSize {
			flush()
			cur = g
			if wordBreak && !endsWithSpace(spans) {
				sb.WriteByte(' ')
			}
		} else if wordBreak && !strings.HasSuffix(sb.String(), " ") && g.S != " " {
			sb.WriteByte(' ')
		}
		sb.WriteString(g.S)
		right = g.X + g.W
	}
	flush()

	if len(spans) == 0 {
		return doctree.Line{}, false
	}
	return doctree.Line{Y0: pageHeight - top, Spans: spans}, true
}

func endsWithSpace(spans []doctree.Span) bool {
	if len(spans) == 0 {
		return false
	}
	return strings.HasSuffix(spans[len(spans)-1].Text, " ")
}
