// Package render — JSON renderer.
// Writes the article collection as a JSON array of {date, author, title}.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// JSONRenderer produces the JSON array output.
type JSONRenderer struct {
	// Indent pretty-prints the array with two-space indentation.
	Indent bool
}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer(indent bool) *JSONRenderer {
	return &JSONRenderer{Indent: indent}
}

// Render marshals the articles. HTML characters such as & are written as-is
// and an empty collection renders as [].
func (r *JSONRenderer) Render(articles []core.Article) ([]byte, error) {
	if articles == nil {
		articles = []core.Article{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if r.Indent {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(articles); err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
