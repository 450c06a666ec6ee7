// Package core defines the pipeline interfaces for reportpipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// FetchResult holds the raw page text and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// RawRecord is one loosely-typed entry decoded from the embedded JS object.
// Expected keys are publish_on, authors and title, but none are guaranteed.
type RawRecord map[string]any

// Article is the normalized three-field shape written to every output.
type Article struct {
	Date   string `json:"date"`
	Author string `json:"author"`
	Title  string `json:"title"`
}

// Fetcher retrieves raw page text from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor pulls the embedded record array out of raw page text.
type Extractor interface {
	Extract(page string) ([]RawRecord, error)
}

// Normalizer maps a raw record onto the canonical Article shape.
type Normalizer interface {
	Normalize(raw RawRecord) Article
}

// Renderer converts an article collection into a final output format.
type Renderer interface {
	Render(articles []Article) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".csv", ".pdf").
	Extension() string
}
