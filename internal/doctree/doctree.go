package doctree

import "strings"

// Document is the parsed, format-independent view of a source file.
type Document struct {
	Name  string     // Source filename
	Title string     // Title from document metadata (may be empty)
	TOC   []TOCEntry // Built-in table of contents, in document order
	Pages []Page     // Positioned text, one entry per page
	Text  string     // Linearized full text
}

// TOCEntry is one row of an embedded table of contents.
type TOCEntry struct {
	Depth int // 1-based nesting depth
	Title string
	Page  int // 1-based target page, -1 when the destination cannot be resolved
}

// Page holds the text lines of a single page.
type Page struct {
	Number int     // 1-based
	Height float64 // In points
	Lines  []Line
}

// Line is a group of spans sharing one vertical position.
type Line struct {
	Y0    float64 // Top edge, measured from the top of the page
	Spans []Span
}

// Text joins the line's spans.
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Span is a run of text sharing one font name and size.
type Span struct {
	Text     string
	FontSize float64
	FontName string
	Bold     bool
}

// NewSpan builds a span, deriving the bold flag from the font name.
func NewSpan(text string, size float64, font string) Span {
	return Span{Text: text, FontSize: size, FontName: font, Bold: IsBoldFont(font)}
}

// IsBoldFont reports whether a font name denotes a bold or black weight.
func IsBoldFont(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "bold") || strings.Contains(n, "black")
}

// Level is a heading tier.
type Level string

const (
	LevelH1 Level = "H1"
	LevelH2 Level = "H2"
	LevelH3 Level = "H3"
)

// Heading is a single outline entry.
type Heading struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Outline is the inferred logical structure of a document.
type Outline struct {
	Title    string    `json:"title"`
	Headings []Heading `json:"outline"`
}

// Chunk is the body text attributed to the heading that precedes it.
type Chunk struct {
	DocName      string `json:"doc_name"`
	PageNum      int    `json:"page_num"`
	SectionTitle string `json:"section_title"`
	Text         string `json:"text"`
}
