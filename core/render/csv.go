// Package render provides output renderers for the reportpipe pipeline.
// This file implements the CSV renderer: a fixed Date,Author,Title header
// followed by one row per article.
package render

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// CSVHeader is the header row written before any article.
var CSVHeader = []string{"Date", "Author", "Title"}

// CSVRenderer writes articles as comma-separated rows.
type CSVRenderer struct{}

// NewCSVRenderer creates a CSVRenderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// Render writes the header and one row per article. An empty collection
// still produces the header row.
func (r *CSVRenderer) Render(articles []core.Article) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	for i, a := range articles {
		if err := w.Write([]string{a.Date, a.Author, a.Title}); err != nil {
			return nil, fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for CSV output.
func (r *CSVRenderer) Extension() string {
	return ".csv"
}
