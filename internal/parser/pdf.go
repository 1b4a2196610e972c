package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	defaultPageHeight = 792.0 // US Letter
	maxOutlineItems   = 10000
	maxNameTreeDepth  = 32
)

// PDFParser extracts positioned text, metadata and the outline
// dictionary from PDF files.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (doc *doctree.Document, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	// ledongthuc/pdf panics on malformed objects.
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("%w: %s: %v", ErrCorrupt, filename, rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, filename, err)
	}

	doc = &doctree.Document{
		Name:  filename,
		Title: reader.Trailer().Key("Info").Key("Title").Text(),
	}

	pageIndex := make(map[string]int)
	pageTexts := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// The library exposes no object identity, so pages are keyed by
		// their serialized dictionary. Byte-identical page dictionaries
		// collide; the first one keeps the key.
		if key := page.V.String(); pageIndex[key] == 0 {
			pageIndex[key] = i
		}

		height := pageHeight(page.V)
		lines := buildLines(page.Content().Text, height)
		doc.Pages = append(doc.Pages, doctree.Page{Number: i, Height: height, Lines: lines})

		texts := make([]string, len(lines))
		for j, line := range lines {
			texts[j] = line.Text()
		}
		pageTexts = append(pageTexts, strings.Join(texts, "\n"))
	}
	doc.Text = strings.Join(pageTexts, " ")

	d := &destResolver{root: reader.Trailer().Key("Root"), pages: pageIndex}
	doc.TOC = readOutline(d.root.Key("Outlines").Key("First"), d)

	return doc, nil
}

// pageHeight reads the page's MediaBox, which may be inherited from an
// ancestor in the page tree.
func pageHeight(page pdflib.Value) float64 {
	for v, depth := page, 0; !v.IsNull() && depth < maxNameTreeDepth; v, depth = v.Key("Parent"), depth+1 {
		box := v.Key("MediaBox")
		if box.Kind() != pdflib.Array || box.Len() < 4 {
			continue
		}
		if h := box.Index(3).Float64() - box.Index(1).Float64(); h > 0 {
			return h
		}
	}
	return defaultPageHeight
}

// readOutline flattens the outline item tree depth-first.
func readOutline(first pdflib.Value, d *destResolver) []doctree.TOCEntry {
	var (
		entries []doctree.TOCEntry
		visited int
	)
	var walk func(item pdflib.Value, depth int)
	walk = func(item pdflib.Value, depth int) {
		for ; item.Kind() == pdflib.Dict; item = item.Key("Next") {
			if visited++; visited > maxOutlineItems {
				return
			}
			entries = append(entries, doctree.TOCEntry{
				Depth: depth,
				Title: item.Key("Title").Text(),
				Page:  d.itemPage(item),
			})
			walk(item.Key("First"), depth+1)
		}
	}
	walk(first, 1)
	return entries
}

// destResolver maps outline destinations onto 1-based page numbers.
type destResolver struct {
	root  pdflib.Value
	pages map[string]int
}

func (d *destResolver) itemPage(item pdflib.Value) int {
	dest := item.Key("Dest")
	if dest.IsNull() {
		if action := item.Key("A"); action.Key("S").Name() == "GoTo" {
			dest = action.Key("D")
		}
	}
	return d.resolve(dest, 0)
}

func (d *destResolver) resolve(dest pdflib.Value, depth int) int {
	if depth > 2 {
		return -1
	}
	switch dest.Kind() {
	case pdflib.Array:
		if dest.Len() == 0 {
			return -1
		}
		target := dest.Index(0)
		switch target.Kind() {
		case pdflib.Dict:
			if n, ok := d.pages[target.String()]; ok {
				return n
			}
		case pdflib.Integer:
			// Remote-style destinations carry a 0-based page index.
			return int(target.Int64()) + 1
		}
		return -1
	case pdflib.Dict:
		return d.resolve(dest.Key("D"), depth+1)
	case pdflib.Name:
		return d.resolve(d.named(dest.Name()), depth+1)
	case pdflib.String:
		return d.resolve(d.named(dest.RawString()), depth+1)
	}
	return -1
}

// named looks a destination up in the catalog's Dests dictionary, then in
// the Names/Dests name tree.
func (d *destResolver) named(name string) pdflib.Value {
	if v := d.root.Key("Dests").Key(name); !v.IsNull() {
		return v
	}
	return lookupNameTree(d.root.Key("Names").Key("Dests"), name, 0)
}

func lookupNameTree(node pdflib.Value, name string, depth int) pdflib.Value {
	if node.Kind() != pdflib.Dict || depth > maxNameTreeDepth {
		return pdflib.Value{}
	}
	names := node.Key("Names")
	for i := 0; i+1 < names.Len(); i += 2 {
		if names.Index(i).RawString() == name {
			return names.Index(i + 1)
		}
	}
	kids := node.Key("Kids")
	for i := 0; i < kids.Len(); i++ {
		kid := kids.Index(i)
		if limits := kid.Key("Limits"); limits.Len() == 2 {
			if name < limits.Index(0).RawString() || name > limits.Index(1).RawString() {
				continue
			}
		}
		if v := lookupNameTree(kid, name, depth+1); !v.IsNull() {
			return v
		}
	}
	return pdflib.Value{}
}
