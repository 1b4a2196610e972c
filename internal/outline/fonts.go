package outline

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	headerMarginRatio = 0.07
	footerMarginRatio = 0.93

	// headingSizeRatio is how much larger than body text a size must be
	// before every line set in it counts as a heading.
	headingSizeRatio = 1.15

	minSpanRunes = 3
)

// listMarkers are prefixes that disqualify a heading candidate. The second
// entry is the UTF-8 bullet decoded as Windows-1252.
var listMarkers = []string{"•", "â€¢", "o", "-", "*"}

// observation is one surviving span recorded in a font bucket.
type observation struct {
	Text string
	Page int
	Bold bool
}

type fontBucket struct {
	Size  float64
	Count int
	Lines []observation
}

// fontHistogram buckets spans by rounded font size. Buckets keep
// first-seen order so ties resolve deterministically.
type fontHistogram struct {
	order   []float64
	buckets map[float64]*fontBucket
}

func newFontHistogram() *fontHistogram {
	return &fontHistogram{buckets: make(map[float64]*fontBucket)}
}

func (h *fontHistogram) add(size float64, obs observation) {
	b, ok := h.buckets[size]
	if !ok {
		b = &fontBucket{Size: size}
		h.buckets[size] = b
		h.order = append(h.order, size)
	}
	b.Count++
	b.Lines = append(b.Lines, obs)
}

func (h *fontHistogram) empty() bool {
	return len(h.order) == 0
}

// each visits buckets in first-seen order.
func (h *fontHistogram) each(fn func(*fontBucket)) {
	for _, size := range h.order {
		fn(h.buckets[size])
	}
}

// bodySize returns the most frequent font size; the earliest bucket wins ties.
func (h *fontHistogram) bodySize() float64 {
	var best *fontBucket
	h.each(func(b *fontBucket) {
		if best == nil || b.Count > best.Count {
			best = b
		}
	})
	if best == nil {
		return 0
	}
	return best.Size
}

// collectFonts makes the single pass over every page, dropping header and
// footer lines and noise spans.
func collectFonts(doc *doctree.Document) *fontHistogram {
	h := newFontHistogram()
	for i, page := range doc.Pages {
		pageNum := page.Number
		if pageNum == 0 {
			pageNum = i + 1
		}
		for _, line := range page.Lines {
			if len(line.Spans) == 0 || inMargin(line.Y0, page.Height) {
				continue
			}
			for _, span := range line.Spans {
				text := strings.TrimSpace(span.Text)
				if isNoise(text) {
					continue
				}
				h.add(roundSize(span.FontSize), observation{
					Text: text,
					Page: pageNum,
					Bold: span.Bold,
				})
			}
		}
	}
	return h
}

// inMargin reports whether a line's top edge sits in the header or footer band.
func inMargin(y0, pageHeight float64) bool {
	return y0 < pageHeight*headerMarginRatio || y0 > pageHeight*footerMarginRatio
}

func isNoise(text string) bool {
	if text == "" || utf8.RuneCountInString(text) < minSpanRunes {
		return true
	}
	return isNumeric(text)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return s != ""
}

// roundSize rounds to one decimal on the shortest decimal representation,
// so exact halves go to the even digit.
func roundSize(size float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(size, 'f', 1, 64), 64)
	if err != nil {
		return size
	}
	return r
}

func hasListMarker(text string) bool {
	for _, m := range listMarkers {
		if strings.HasPrefix(text, m) {
			return true
		}
	}
	return false
}

// fontHeadings applies the size/boldness rules to the histogram and
// returns unique headings sorted by page then text.
func fontHeadings(h *fontHistogram) []doctree.Heading {
	if h.empty() {
		return []doctree.Heading{}
	}
	body := h.bodySize()

	seen := make(map[doctree.Heading]bool)
	headings := []doctree.Heading{}
	h.each(func(b *fontBucket) {
		largeSize := b.Size > body*headingSizeRatio
		for _, obs := range b.Lines {
			boldHeading := obs.Bold && b.Size >= body
			if !boldHeading && !largeSize {
				continue
			}
			if hasListMarker(obs.Text) {
				continue
			}
			hd := doctree.Heading{Level: doctree.LevelH2, Text: obs.Text, Page: obs.Page}
			if seen[hd] {
				continue
			}
			seen[hd] = true
			headings = append(headings, hd)
		}
	})

	sortHeadings(headings)
	return headings
}
