// Package chunker splits a document's linearized text into segments
// labeled by the outline headings they follow.
package chunker

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

var multiSpace = regexp.MustCompile(` +`)

// Normalize flattens newlines and bullet glyphs to spaces and collapses
// runs of spaces.
func Normalize(text string) string {
	text = strings.NewReplacer("\n", " ", "•", " ").Replace(text)
	return multiSpace.ReplaceAllString(text, " ")
}

// Chunk partitions fullText at every occurrence of a heading's text. The
// segment following a match becomes that heading's chunk and the heading is
// then cleared, so text before the first match is never attributed.
func Chunk(docName, fullText string, headings []doctree.Heading) []doctree.Chunk {
	if len(headings) == 0 {
		return nil
	}

	texts := make([]string, len(headings))
	index := make(map[string]int, len(headings))
	for i, h := range headings {
		texts[i] = h.Text
		// Duplicate texts resolve to the first heading carrying them.
		if _, ok := index[h.Text]; !ok {
			index[h.Text] = i
		}
	}

	m := newMatcher(texts)
	if m.empty() {
		return nil
	}

	var chunks []doctree.Chunk
	current := -1
	for _, seg := range m.split(Normalize(fullText)) {
		if strings.TrimSpace(seg.text) == "" {
			continue
		}
		if seg.heading {
			current = index[seg.text]
			continue
		}
		if current == -1 {
			continue
		}
		h := headings[current]
		chunks = append(chunks, doctree.Chunk{
			DocName:      docName,
			PageNum:      h.Page,
			SectionTitle: h.Text,
			Text:         strings.TrimSpace(seg.text),
		})
		current = -1
	}
	return chunks
}
