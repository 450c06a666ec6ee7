package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gaurav-prasanna/reportpipe/config"
	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/extract"
	"github.com/gaurav-prasanna/reportpipe/core/jsobj"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const snippetPage = `<html><head><title>Reports</title></head><body>
<p>Latest research</p>
<script>
  report_obj = [{title:'A &amp; B', authors:'', publish_on:'2024-01-01'}];
</script>
</body></html>`

const multiPage = `<html><body><script>
var report_obj = [
  {title: 'First &amp; foremost', authors: 'Ann O&#39;Neil', publish_on: '2024-03-01'},
  {title: '', authors: '', publish_on: ''},
  {title: 'Third', authors: 'Bo', publish_on: '2024-01-15'},
];
</script></body></html>`

func servePage(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func testConfig(t *testing.T, url string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Source.URL = url
	cfg.Source.RetryCount = 0
	cfg.Output.Dir = filepath.Join(t.TempDir(), "data")
	return cfg
}

func newTestPipeline(t *testing.T, cfg config.Config) *Pipeline {
	t.Helper()
	p, err := New(cfg)
	require.NoError(t, err)
	p.Writer.Now = func() time.Time { return time.Date(2024, 1, 2, 15, 4, 0, 0, time.UTC) }
	return p
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t, servePage(t, http.StatusOK, snippetPage))

	result, err := newTestPipeline(t, cfg).Run(context.Background())
	require.NoError(t, err)

	expected := []core.Article{{Date: "2024-01-01", Author: "Unknown Author", Title: "A & B"}}
	require.Equal(t, expected, result.Articles)
	require.Equal(t, []string{
		filepath.Join(cfg.Output.Dir, "articles_20240102-1504.csv"),
		filepath.Join(cfg.Output.Dir, "articles.json"),
	}, result.Paths)

	csvData, err := os.ReadFile(result.Paths[0])
	require.NoError(t, err)
	require.Equal(t, "Date,Author,Title\n2024-01-01,Unknown Author,A & B\n", string(csvData))

	jsonData, err := os.ReadFile(result.Paths[1])
	require.NoError(t, err)
	var decoded []core.Article
	require.NoError(t, json.Unmarshal(jsonData, &decoded))
	require.Equal(t, expected, decoded)
}

func TestRunCountsAgree(t *testing.T) {
	cfg := testConfig(t, servePage(t, http.StatusOK, multiPage))

	result, err := newTestPipeline(t, cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Articles, 3)

	f, err := os.Open(result.Paths[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	jsonData, err := os.ReadFile(result.Paths[1])
	require.NoError(t, err)
	var decoded []core.Article
	require.NoError(t, json.Unmarshal(jsonData, &decoded))

	require.Equal(t, len(result.Articles), len(rows)-1)
	require.Equal(t, len(result.Articles), len(decoded))

	expected := []core.Article{
		{Date: "2024-03-01", Author: "Ann O'Neil", Title: "First & foremost"},
		{Date: "Unknown Date", Author: "Unknown Author", Title: "Unknown Title"},
		{Date: "2024-01-15", Author: "Bo", Title: "Third"},
	}
	if diff := cmp.Diff(expected, decoded); diff != "" {
		t.Errorf("articles.json mismatch (-want +got):\n%s", diff)
	}
	for i, a := range expected {
		require.Equal(t, []string{a.Date, a.Author, a.Title}, rows[i+1])
	}
}

func TestRunLegacyChain(t *testing.T) {
	cfg := testConfig(t, servePage(t, http.StatusOK, multiPage))
	cfg.Normalize.LegacyChain = true

	articles, err := newTestPipeline(t, cfg).Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, core.Article{Date: "Unknown Date", Author: "", Title: ""}, articles[1])
}

func TestRunNon200WritesNothing(t *testing.T) {
	cfg := testConfig(t, servePage(t, http.StatusForbidden, snippetPage))

	result, err := newTestPipeline(t, cfg).Run(context.Background())
	require.ErrorIs(t, err, ErrNoArticles)
	require.Empty(t, result.Articles)
	require.Empty(t, result.Paths)

	_, statErr := os.Stat(cfg.Output.Dir)
	require.True(t, os.IsNotExist(statErr), "output directory must not be created")
}

func TestRunEmptyListingWritesNothing(t *testing.T) {
	cfg := testConfig(t, servePage(t, http.StatusOK, `<script>report_obj = [];</script>`))

	_, err := newTestPipeline(t, cfg).Run(context.Background())
	require.ErrorIs(t, err, ErrNoArticles)

	_, statErr := os.Stat(cfg.Output.Dir)
	require.True(t, os.IsNotExist(statErr))
}

func TestRunMissingMarkerIsFatal(t *testing.T) {
	cfg := testConfig(t, servePage(t, http.StatusOK, `<html><body>redesigned page</body></html>`))

	_, err := newTestPipeline(t, cfg).Run(context.Background())
	require.ErrorIs(t, err, extract.ErrMarkerNotFound)
	require.NotErrorIs(t, err, ErrNoArticles)
}

func TestRunMalformedLiteralIsFatal(t *testing.T) {
	cfg := testConfig(t, servePage(t, http.StatusOK, `<script>report_obj = [{title: 'x' authors: 'y'}];</script>`))

	_, err := newTestPipeline(t, cfg).Run(context.Background())
	var syntaxErr *jsobj.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
}

func TestRunExtraFormats(t *testing.T) {
	cfg := testConfig(t, servePage(t, http.StatusOK, multiPage))
	cfg.Output.Formats = []string{config.FormatCSV, config.FormatJSON, config.FormatMarkdown, config.FormatPDF}

	result, err := newTestPipeline(t, cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Paths, 4)
	require.Equal(t, filepath.Join(cfg.Output.Dir, "articles.md"), result.Paths[2])
	require.Equal(t, filepath.Join(cfg.Output.Dir, "articles.pdf"), result.Paths[3])
	for _, p := range result.Paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
	}
}

func TestRunWriteErrorIsFatal(t *testing.T) {
	cfg := testConfig(t, servePage(t, http.StatusOK, snippetPage))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(cfg.Output.Dir), "data"), []byte("file, not dir"), 0644))

	_, err := newTestPipeline(t, cfg).Run(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoArticles)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Formats = nil

	_, err := New(cfg)
	require.ErrorIs(t, err, config.ErrNoFormats)
}

type stubFetcher struct {
	html string
	err  error
}

func (s stubFetcher) Fetch(_ context.Context, url string) (*core.FetchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &core.FetchResult{URL: url, StatusCode: http.StatusOK, HTML: s.html}, nil
}

func TestCollectWithStubFetcher(t *testing.T) {
	p := newTestPipeline(t, testConfig(t, "https://example.com/reports"))
	p.Fetcher = stubFetcher{html: snippetPage}

	articles, err := p.Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, []core.Article{{Date: "2024-01-01", Author: "Unknown Author", Title: "A & B"}}, articles)
}

func TestCollectPropagatesUnexpectedFetchErrors(t *testing.T) {
	p := newTestPipeline(t, testConfig(t, "https://example.com/reports"))
	boom := errors.New("boom")
	p.Fetcher = stubFetcher{err: boom}

	_, err := p.Collect(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestOutputsFollowConfiguredOrder(t *testing.T) {
	outputs := Outputs(config.OutputConfig{Formats: []string{config.FormatJSON, config.FormatCSV}})
	require.Len(t, outputs, 2)
	require.Equal(t, ".json", outputs[0].Renderer.Extension())
	require.False(t, outputs[0].Timestamped)
	require.Equal(t, ".csv", outputs[1].Renderer.Extension())
	require.True(t, outputs[1].Timestamped)
}
