package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// DOCXParser handles .docx files. Paragraphs styled Heading1-6 become the
// table of contents and a Title-styled paragraph the metadata title.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse docx: %v", ErrCorrupt, err)
	}

	b := newBlockBuilder(filename)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		text := docxParagraphText(para)
		switch level := docxHeadingLevel(para); {
		case level > 0:
			b.heading(level, text)
		case docxStyle(para) == "title" && b.doc.Title == "":
			b.doc.Title = text
			b.text(text)
		default:
			b.text(text)
		}
	}
	return b.build(), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

// docxHeadingLevel accepts both the style ID ("Heading2") and the style
// name ("heading 2").
func docxHeadingLevel(para *docx.Paragraph) int {
	style := docxStyle(para)
	if len(style) == len("heading")+1 && strings.HasPrefix(style, "heading") {
		if c := style[len(style)-1]; c >= '1' && c <= '6' {
			return int(c - '0')
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
