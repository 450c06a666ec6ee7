// Package render — Markdown renderer.
// Builds an HTML list of the articles and converts it with html-to-markdown,
// so Markdown-significant characters in titles are escaped by the converter.
package render

import (
	"fmt"
	"html"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gaurav-prasanna/reportpipe/core"
)

// MarkdownRenderer writes a Markdown report listing every article.
type MarkdownRenderer struct {
	Heading string
}

// NewMarkdownRenderer creates a MarkdownRenderer with the given heading.
func NewMarkdownRenderer(heading string) *MarkdownRenderer {
	if heading == "" {
		heading = "Articles"
	}
	return &MarkdownRenderer{Heading: heading}
}

// Render converts the articles into a Markdown list, one item per article.
func (r *MarkdownRenderer) Render(articles []core.Article) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(r.Heading))

	if len(articles) == 0 {
		b.WriteString("<p>No articles.</p>")
	} else {
		b.WriteString("<ul>")
		for _, a := range articles {
			fmt.Fprintf(&b, "<li><strong>%s</strong> by %s (%s)</li>",
				html.EscapeString(a.Title),
				html.EscapeString(a.Author),
				html.EscapeString(a.Date),
			)
		}
		b.WriteString("</ul>")
	}

	markdown, err := htmltomarkdown.ConvertString(b.String())
	if err != nil {
		return nil, fmt.Errorf("converting article list to markdown: %w", err)
	}
	return []byte(markdown + "\n"), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
