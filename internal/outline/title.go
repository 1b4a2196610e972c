package outline

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// UntitledDocument is returned when neither metadata nor page 1 yields a title.
const UntitledDocument = "Untitled Document"

const (
	maxMetadataTitleWords = 20
	maxFallbackTitleWords = 15
)

// ResolveTitle picks a document title from metadata, falling back to the
// line on page 1 whose first span has the largest font size.
func ResolveTitle(doc *doctree.Document) string {
	if title := strings.TrimSpace(doc.Title); acceptMetadataTitle(title) {
		return title
	}

	if len(doc.Pages) > 0 {
		var maxSize float64
		candidate := ""
		for _, line := range doc.Pages[0].Lines {
			if len(line.Spans) == 0 {
				continue
			}
			text := strings.TrimSpace(line.Text())
			if len(strings.Fields(text)) >= maxFallbackTitleWords {
				continue
			}
			// First encountered wins on equal sizes.
			if size := line.Spans[0].FontSize; size > maxSize {
				maxSize = size
				candidate = text
			}
		}
		if candidate != "" {
			return candidate
		}
	}

	return UntitledDocument
}

func acceptMetadataTitle(title string) bool {
	return utf8.RuneCountInString(title) > 3 && len(strings.Fields(title)) < maxMetadataTitleWords
}
