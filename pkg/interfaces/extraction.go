package interfaces

// ExtractedContent is the shape produced by the page-extraction collaborator.
// The rendering pipeline consumes it to build a publishable markdown document;
// how the fields were pulled out of the source markup is not this module's
// concern.
type ExtractedContent struct {
	Title    string           `json:"title"`
	Headings []string         `json:"headings,omitempty"`
	Body     string           `json:"body"`
	Lists    [][]string       `json:"lists,omitempty"`
	Tables   []ExtractedTable `json:"tables,omitempty"`
}

// ExtractedTable carries a tabular fragment lifted from the source page.
type ExtractedTable struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

// FrontSection is the structured block serialized ahead of a rendered
// document's body. It travels with the content so consumers can identify the
// source and the exact revision without a database lookup.
type FrontSection struct {
	Title       string `yaml:"title"`
	Source      string `yaml:"source"`
	ContentHash string `yaml:"content_hash"`
	GeneratedAt string `yaml:"generated_at"`
}

// MarkdownRenderer converts extracted content into a publishable markdown
// document and can produce an HTML preview of stored markdown.
type MarkdownRenderer interface {
	Render(front FrontSection, content ExtractedContent) (string, error)
	PreviewHTML(markdown []byte) ([]byte, error)
}
