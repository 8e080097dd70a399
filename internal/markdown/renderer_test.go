package markdown

import (
	"strings"
	"testing"

	"github.com/malwarescan/croutons-merge-service/pkg/interfaces"
)

func TestRenderDocumentShape(t *testing.T) {
	renderer := NewGoldmarkRenderer()

	front := interfaces.FrontSection{
		Title:       "Asok After Dark",
		Source:      "https://example.com/asok",
		ContentHash: "abc123",
		GeneratedAt: "2025-03-01T12:00:00Z",
	}
	content := interfaces.ExtractedContent{
		Title:    "Asok After Dark",
		Headings: []string{"Asok After Dark", "Getting There"},
		Body:     "Busy interchange district.",
		Lists:    [][]string{{"MRT Sukhumvit", "BTS Asok"}},
		Tables: []interfaces.ExtractedTable{
			{Headers: []string{"Category", "Range"}, Rows: [][]string{{"Massage", "400-800 THB"}, {"Drinks", "150+ THB"}}},
		},
	}

	doc, err := renderer.Render(front, content)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if !strings.HasPrefix(doc, "---\n") {
		t.Fatalf("expected leading front section:\n%s", doc)
	}
	if !strings.Contains(doc, "content_hash: abc123") {
		t.Fatalf("expected content hash in front section:\n%s", doc)
	}
	if !strings.Contains(doc, "# Asok After Dark\n") {
		t.Fatalf("expected title heading:\n%s", doc)
	}
	if strings.Count(doc, "Asok After Dark") < 2 {
		t.Fatalf("front section and title must both carry the title:\n%s", doc)
	}
	if strings.Contains(doc, "## Asok After Dark") {
		t.Fatalf("heading duplicating the title must be dropped:\n%s", doc)
	}
	if !strings.Contains(doc, "## Getting There") {
		t.Fatalf("expected secondary heading:\n%s", doc)
	}
	if !strings.Contains(doc, "- MRT Sukhumvit\n- BTS Asok\n") {
		t.Fatalf("expected list items:\n%s", doc)
	}
	if !strings.Contains(doc, "| Category | Range |") || !strings.Contains(doc, "| --- | --- |") {
		t.Fatalf("expected pipe table:\n%s", doc)
	}
}

func TestRenderEscapesTableCells(t *testing.T) {
	renderer := NewGoldmarkRenderer()

	doc, err := renderer.Render(interfaces.FrontSection{}, interfaces.ExtractedContent{
		Body: "x",
		Tables: []interfaces.ExtractedTable{
			{Headers: []string{"Name"}, Rows: [][]string{{"Spa | Lounge"}}},
		},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(doc, `Spa \| Lounge`) {
		t.Fatalf("pipe characters in cells must be escaped:\n%s", doc)
	}
}

func TestRenderPadsShortRows(t *testing.T) {
	renderer := NewGoldmarkRenderer()

	doc, err := renderer.Render(interfaces.FrontSection{}, interfaces.ExtractedContent{
		Body: "x",
		Tables: []interfaces.ExtractedTable{
			{Headers: []string{"A", "B", "C"}, Rows: [][]string{{"only"}}},
		},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(doc, "| only |  |  |") {
		t.Fatalf("short rows must be padded to the table width:\n%s", doc)
	}
}

func TestPreviewHTMLSkipsFrontSection(t *testing.T) {
	renderer := NewGoldmarkRenderer()

	doc, err := renderer.Render(interfaces.FrontSection{Title: "Guide", ContentHash: "abc"}, interfaces.ExtractedContent{
		Title: "Guide",
		Body:  "Some **bold** copy.",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	html, err := renderer.PreviewHTML([]byte(doc))
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	out := string(html)
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("expected emphasis in output:\n%s", out)
	}
	if strings.Contains(out, "content_hash") {
		t.Fatalf("front section must not leak into HTML:\n%s", out)
	}
}

func TestParseFrontSectionRoundTrip(t *testing.T) {
	renderer := NewGoldmarkRenderer()
	front := interfaces.FrontSection{
		Title:       "Guide",
		Source:      "https://example.com",
		ContentHash: "deadbeef",
		GeneratedAt: "2025-03-01T12:00:00Z",
	}

	doc, err := renderer.Render(front, interfaces.ExtractedContent{Title: "Guide", Body: "copy"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	parsed, body, err := ParseFrontSection([]byte(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != front {
		t.Fatalf("round trip mismatch: %+v vs %+v", parsed, front)
	}
	if !strings.Contains(string(body), "# Guide") {
		t.Fatalf("expected body after front section:\n%s", body)
	}
}

func TestStripFrontSectionPassThrough(t *testing.T) {
	plain := []byte("# No Front Section\n\ncopy\n")
	out, err := StripFrontSection(plain)
	if err != nil {
		t.Fatalf("strip failed: %v", err)
	}
	if string(out) != string(plain) {
		t.Fatalf("documents without a front section must pass through, got:\n%s", out)
	}
}
