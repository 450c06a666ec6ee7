package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var sampleArticles = []core.Article{
	{Date: "2024-01-01", Author: "Unknown Author", Title: "A & B"},
	{Date: "2024-02-10", Author: "Ann O'Neil", Title: "Streaming, TV and \"more\""},
	{Date: "Unknown Date", Author: "Bo", Title: "Café économie"},
}

func TestCSVRender(t *testing.T) {
	data, err := NewCSVRenderer().Render(sampleArticles)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	expected := [][]string{
		{"Date", "Author", "Title"},
		{"2024-01-01", "Unknown Author", "A & B"},
		{"2024-02-10", "Ann O'Neil", "Streaming, TV and \"more\""},
		{"Unknown Date", "Bo", "Café économie"},
	}
	if diff := cmp.Diff(expected, rows); diff != "" {
		t.Errorf("CSV rows mismatch (-want +got):\n%s", diff)
	}
	require.True(t, strings.HasPrefix(string(data), "Date,Author,Title\n"))
	require.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestCSVRenderEmptyWritesHeaderOnly(t *testing.T) {
	data, err := NewCSVRenderer().Render(nil)
	require.NoError(t, err)
	require.Equal(t, "Date,Author,Title\n", string(data))
}

func TestJSONRender(t *testing.T) {
	data, err := NewJSONRenderer(false).Render(sampleArticles)
	require.NoError(t, err)
	require.Contains(t, string(data), `"title":"A & B"`)

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, len(sampleArticles))
	for i, a := range sampleArticles {
		require.Equal(t, map[string]string{"date": a.Date, "author": a.Author, "title": a.Title}, decoded[i])
	}
}

func TestJSONRenderIndent(t *testing.T) {
	data, err := NewJSONRenderer(true).Render(sampleArticles[:1])
	require.NoError(t, err)
	require.Equal(t, "[\n  {\n    \"date\": \"2024-01-01\",\n    \"author\": \"Unknown Author\",\n    \"title\": \"A & B\"\n  }\n]\n", string(data))
}

func TestJSONRenderEmpty(t *testing.T) {
	data, err := NewJSONRenderer(false).Render(nil)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(data))
}

func TestMarkdownRender(t *testing.T) {
	articles := []core.Article{
		{Date: "2024-01-01", Author: "Ann", Title: "Quarterly outlook"},
		{Date: "2024-01-02", Author: "Bo", Title: "Annual review"},
	}

	data, err := NewMarkdownRenderer("").Render(articles)
	require.NoError(t, err)

	md := string(data)
	require.Contains(t, md, "# Articles")
	require.Contains(t, md, "**Quarterly outlook** by Ann (2024-01-01)")
	require.Contains(t, md, "**Annual review** by Bo (2024-01-02)")
	require.Less(t, strings.Index(md, "Quarterly outlook"), strings.Index(md, "Annual review"))
}

func TestMarkdownRenderEmpty(t *testing.T) {
	data, err := NewMarkdownRenderer("Reports").Render(nil)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Reports")
	require.Contains(t, string(data), "No articles.")
}

func TestPDFRender(t *testing.T) {
	data, err := NewPDFRenderer("").Render(sampleArticles)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	require.Greater(t, len(data), 500)
}

func TestExtensions(t *testing.T) {
	require.Equal(t, ".csv", NewCSVRenderer().Extension())
	require.Equal(t, ".json", NewJSONRenderer(false).Extension())
	require.Equal(t, ".md", NewMarkdownRenderer("").Extension())
	require.Equal(t, ".pdf", NewPDFRenderer("").Extension())
}
