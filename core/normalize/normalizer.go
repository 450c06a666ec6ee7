// Package normalize implements the Normalizer interface.
// It maps loosely-typed records decoded from the page onto the fixed
// date/author/title shape, decoding the HTML entities the page leaves in
// author and title strings and filling in defaults for empty fields.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// Source keys read from each raw record.
const (
	KeyDate   = "publish_on"
	KeyAuthor = "authors"
	KeyTitle  = "title"
)

// Defaults substituted for empty fields.
const (
	UnknownDate   = "Unknown Date"
	UnknownAuthor = "Unknown Author"
	UnknownTitle  = "Unknown Title"
)

// Mode selects how defaults are applied to empty fields.
type Mode int

const (
	// ModeIndependent defaults every empty field on its own, so no output
	// field is ever empty.
	ModeIndependent Mode = iota
	// ModeLegacyChain checks date, then author, then title, and stops at the
	// first empty one. When the date is empty, an empty author or title is
	// left empty.
	ModeLegacyChain
)

func (m Mode) String() string {
	switch m {
	case ModeIndependent:
		return "independent"
	case ModeLegacyChain:
		return "legacy-chain"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

var entityReplacer = strings.NewReplacer("&#39;", "'", "&amp;", "&")

// RecordNormalizer converts raw records into articles.
type RecordNormalizer struct {
	Mode Mode
}

// New creates a RecordNormalizer using the given default mode.
func New(mode Mode) *RecordNormalizer {
	return &RecordNormalizer{Mode: mode}
}

// Normalize maps one raw record onto an Article. It never fails: missing
// or mistyped fields are treated as empty.
func (n *RecordNormalizer) Normalize(raw core.RawRecord) core.Article {
	article := core.Article{
		Date:   stringify(raw[KeyDate]),
		Author: DecodeEntities(stringify(raw[KeyAuthor])),
		Title:  DecodeEntities(stringify(raw[KeyTitle])),
	}

	if n.Mode == ModeLegacyChain {
		switch {
		case article.Date == "":
			article.Date = UnknownDate
		case article.Author == "":
			article.Author = UnknownAuthor
		case article.Title == "":
			article.Title = UnknownTitle
		}
		return article
	}

	if article.Date == "" {
		article.Date = UnknownDate
	}
	if article.Author == "" {
		article.Author = UnknownAuthor
	}
	if article.Title == "" {
		article.Title = UnknownTitle
	}
	return article
}

// NormalizeAll normalizes every record, preserving order.
func (n *RecordNormalizer) NormalizeAll(raws []core.RawRecord) []core.Article {
	articles := make([]core.Article, 0, len(raws))
	for _, raw := range raws {
		articles = append(articles, n.Normalize(raw))
	}
	return articles
}

// DecodeEntities replaces the &#39; and &amp; entities the source page
// emits. Other entities are left as they are.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// stringify renders a decoded value as text. Falsy values (nil, false, 0,
// empty strings, empty arrays and objects) become the empty string.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
		return "true"
	case float64:
		if val == 0 {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		if len(val) == 0 {
			return ""
		}
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if len(val) == 0 {
			return ""
		}
		return fmt.Sprint(val)
	}
	return fmt.Sprint(v)
}
