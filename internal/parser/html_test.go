package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_HeadingsAndTitle(t *testing.T) {
	input := `<html><head><title> Field   Guide </title><style>h1{}</style></head>
<body>
<nav>skip me</nav>
<h1>Birds</h1>
<p>Birds have   feathers.</p>
<h3>Owls</h3>
<ul><li>Barn owl</li><li>Snowy owl</li></ul>
<script>var x = 1;</script>
</body></html>`

	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "guide.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Field Guide" {
		t.Errorf("expected title %q, got %q", "Field Guide", doc.Title)
	}
	if len(doc.TOC) != 2 {
		t.Fatalf("expected 2 TOC entries, got %+v", doc.TOC)
	}
	if doc.TOC[0].Title != "Birds" || doc.TOC[0].Depth != 1 {
		t.Errorf("unexpected first entry %+v", doc.TOC[0])
	}
	if doc.TOC[1].Title != "Owls" || doc.TOC[1].Depth != 3 {
		t.Errorf("unexpected second entry %+v", doc.TOC[1])
	}

	want := "Birds\nBirds have feathers.\nOwls\nBarn owl\nSnowy owl"
	if doc.Text != want {
		t.Errorf("text mismatch:\n got %q\nwant %q", doc.Text, want)
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := map[string]int{"h1": 1, "h6": 6, "h7": 0, "hr": 0, "p": 0, "header": 0}
	for tag, want := range tests {
		if got := headingLevel(tag); got != want {
			t.Errorf("headingLevel(%q) = %d, want %d", tag, got, want)
		}
	}
}
