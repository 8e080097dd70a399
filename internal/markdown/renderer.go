package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"

	"github.com/malwarescan/croutons-merge-service/pkg/interfaces"
)

// GoldmarkRenderer implements interfaces.MarkdownRenderer. The renderer is
// stateless so callers can reuse a single instance across requests without
// additional locking.
type GoldmarkRenderer struct {
	engine goldmark.Markdown
}

// NewGoldmarkRenderer constructs a renderer with GFM extensions enabled,
// which covers the tables and strikethrough syntax emitted by Render.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render assembles a publishable document: a yaml front section followed by
// the markdown body built from the extracted content.
func (r *GoldmarkRenderer) Render(front interfaces.FrontSection, content interfaces.ExtractedContent) (string, error) {
	meta, err := yaml.Marshal(front)
	if err != nil {
		return "", fmt.Errorf("markdown render: marshal front section: %w", err)
	}

	var doc strings.Builder
	doc.WriteString("---\n")
	doc.Write(meta)
	doc.WriteString("---\n\n")
	doc.WriteString(renderBody(content))
	return doc.String(), nil
}

// PreviewHTML converts stored markdown into HTML, skipping the front section.
func (r *GoldmarkRenderer) PreviewHTML(markdown []byte) ([]byte, error) {
	body, err := StripFrontSection(markdown)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.engine.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("markdown preview: %w", err)
	}
	return buf.Bytes(), nil
}

func renderBody(content interfaces.ExtractedContent) string {
	var body strings.Builder

	if title := strings.TrimSpace(content.Title); title != "" {
		body.WriteString("# ")
		body.WriteString(title)
		body.WriteString("\n\n")
	}

	for _, heading := range content.Headings {
		heading = strings.TrimSpace(heading)
		if heading == "" || strings.EqualFold(heading, content.Title) {
			continue
		}
		body.WriteString("## ")
		body.WriteString(heading)
		body.WriteString("\n\n")
	}

	if text := strings.TrimSpace(content.Body); text != "" {
		body.WriteString(text)
		body.WriteString("\n\n")
	}

	for _, list := range content.Lists {
		if len(list) == 0 {
			continue
		}
		for _, item := range list {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			body.WriteString("- ")
			body.WriteString(item)
			body.WriteString("\n")
		}
		body.WriteString("\n")
	}

	for _, table := range content.Tables {
		rendered := renderTable(table)
		if rendered == "" {
			continue
		}
		body.WriteString(rendered)
		body.WriteString("\n")
	}

	return strings.TrimRight(body.String(), "\n") + "\n"
}

// renderTable emits a GFM pipe table. Rows shorter than the header are padded
// so the table stays well formed.
func renderTable(table interfaces.ExtractedTable) string {
	width := len(table.Headers)
	for _, row := range table.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return ""
	}

	var out strings.Builder
	writeRow := func(cells []string) {
		out.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(cells[i], "|", "\\|")
			}
			out.WriteString(" ")
			out.WriteString(strings.TrimSpace(cell))
			out.WriteString(" |")
		}
		out.WriteString("\n")
	}

	headers := table.Headers
	if len(headers) == 0 {
		headers = make([]string, width)
	}
	writeRow(headers)

	out.WriteString("|")
	for i := 0; i < width; i++ {
		out.WriteString(" --- |")
	}
	out.WriteString("\n")

	for _, row := range table.Rows {
		writeRow(row)
	}
	return out.String()
}
