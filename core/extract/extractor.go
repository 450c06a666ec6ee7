// Package extract implements the Extractor interface.
// It isolates the JS object literal a page embeds for its report listing:
//  1. Finding the <script> that carries the start marker (or the raw page
//     text when no script does)
//  2. Slicing the literal between the start and end markers
//  3. Decoding it with the relaxed jsobj parser
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/jsobj"
)

const (
	DefaultStartMarker = "report_obj = "
	DefaultEndMarker   = "];"
)

var (
	ErrMarkerNotFound    = errors.New("start marker not found in page")
	ErrEndMarkerNotFound = errors.New("end marker not found after start marker")
)

// ObjectExtractor finds and decodes the embedded record array.
type ObjectExtractor struct {
	StartMarker string
	EndMarker   string
}

// New creates an ObjectExtractor. Empty markers fall back to the defaults.
func New(startMarker, endMarker string) *ObjectExtractor {
	if startMarker == "" {
		startMarker = DefaultStartMarker
	}
	if endMarker == "" {
		endMarker = DefaultEndMarker
	}
	return &ObjectExtractor{StartMarker: startMarker, EndMarker: endMarker}
}

// Extract returns the records embedded in page, in page order.
// A page without the start marker yields ErrMarkerNotFound and no records.
func (e *ObjectExtractor) Extract(page string) ([]core.RawRecord, error) {
	literal, err := e.Literal(page)
	if err != nil {
		return nil, err
	}

	slog.Debug("decoding embedded object", "bytes", len(literal))
	records, err := jsobj.ParseRecords(literal)
	if err != nil {
		return nil, fmt.Errorf("decoding embedded object: %w", err)
	}

	out := make([]core.RawRecord, 0, len(records))
	for _, r := range records {
		out = append(out, core.RawRecord(r))
	}
	return out, nil
}

// Literal returns the trimmed source text of the embedded array: everything
// after the start marker up to the first end marker, keeping the end marker
// without its trailing semicolon.
func (e *ObjectExtractor) Literal(page string) (string, error) {
	text := e.scriptContaining(page)

	start := strings.Index(text, e.StartMarker)
	if start == -1 {
		return "", fmt.Errorf("%w: %q", ErrMarkerNotFound, e.StartMarker)
	}
	rest := text[start+len(e.StartMarker):]

	end := strings.Index(rest, e.EndMarker)
	if end == -1 {
		return "", fmt.Errorf("%w: %q", ErrEndMarkerNotFound, e.EndMarker)
	}
	// The literal runs through the end marker minus its statement terminator.
	end += len(strings.TrimRight(e.EndMarker, ";"))

	return strings.TrimSpace(rest[:end]), nil
}

// scriptContaining returns the text of the first <script> element holding
// the start marker. Pages that do not parse, or keep the marker outside a
// script, are searched as plain text.
func (e *ObjectExtractor) scriptContaining(page string) string {
	if !strings.Contains(page, e.StartMarker) {
		return page
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		slog.Debug("page is not parseable HTML, searching raw text", "err", err)
		return page
	}

	var found string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, e.StartMarker) {
			found = text
			return false
		}
		return true
	})
	if found == "" {
		return page
	}
	return found
}
