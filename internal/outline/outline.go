// Package outline infers a document's title and heading structure, either
// from its built-in table of contents or from font statistics.
package outline

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Strategy names the path that produced an outline.
type Strategy string

const (
	StrategyTOC   Strategy = "toc"
	StrategyFonts Strategy = "fonts"
)

// Build resolves the title and headings of doc. The table of contents is
// authoritative when present; otherwise headings are inferred from fonts.
func Build(doc *doctree.Document) (doctree.Outline, Strategy, error) {
	if doc == nil {
		return doctree.Outline{}, "", fmt.Errorf("build outline: nil document")
	}

	out := doctree.Outline{Title: ResolveTitle(doc)}

	if headings := fromTOC(doc.TOC); len(headings) > 0 {
		out.Headings = headings
		return out, StrategyTOC, nil
	}

	out.Headings = fontHeadings(collectFonts(doc))
	return out, StrategyFonts, nil
}

// fromTOC maps TOC depth to a heading level clamped to H3, preserving order.
func fromTOC(toc []doctree.TOCEntry) []doctree.Heading {
	if len(toc) == 0 {
		return nil
	}
	headings := make([]doctree.Heading, 0, len(toc))
	for _, e := range toc {
		headings = append(headings, doctree.Heading{
			Level: levelForDepth(e.Depth),
			Text:  e.Title,
			Page:  e.Page,
		})
	}
	return headings
}

func levelForDepth(depth int) doctree.Level {
	return doctree.Level(fmt.Sprintf("H%d", max(1, min(depth, 3))))
}

func sortHeadings(h []doctree.Heading) {
	slices.SortFunc(h, func(a, b doctree.Heading) int {
		if c := cmp.Compare(a.Page, b.Page); c != 0 {
			return c
		}
		return cmp.Compare(a.Text, b.Text)
	})
}
