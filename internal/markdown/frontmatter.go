package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"

	"github.com/malwarescan/croutons-merge-service/pkg/interfaces"
)

// ParseFrontSection extracts the structured front section and the markdown
// body from a stored document.
func ParseFrontSection(source []byte) (interfaces.FrontSection, []byte, error) {
	var front interfaces.FrontSection
	body, err := frontmatter.Parse(bytes.NewReader(source), &front)
	if err != nil {
		return interfaces.FrontSection{}, nil, fmt.Errorf("parse front section: %w", err)
	}
	return front, body, nil
}

// StripFrontSection returns the markdown body with the front section removed.
// Documents without a front section pass through unchanged.
func StripFrontSection(source []byte) ([]byte, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(source), []byte("---")) {
		return source, nil
	}
	_, body, err := ParseFrontSection(source)
	if err != nil {
		return nil, err
	}
	return body, nil
}
