// Package pipeline wires the stages together:
// fetch → extract → normalize → write.
//
// A Pipeline is built from an immutable config.Config; every stage is an
// interface so tests can substitute fixtures.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/reportpipe/config"
	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/extract"
	"github.com/gaurav-prasanna/reportpipe/core/fetch"
	"github.com/gaurav-prasanna/reportpipe/core/normalize"
	"github.com/gaurav-prasanna/reportpipe/core/output"
	"github.com/gaurav-prasanna/reportpipe/core/render"
)

// ErrNoArticles is returned by Run when the page produced no articles,
// either because it could not be fetched or because it listed none.
// Nothing is written in that case.
var ErrNoArticles = errors.New("no articles produced")

// Pipeline runs a single fetch → extract → normalize → write pass.
type Pipeline struct {
	URL        string
	Fetcher    core.Fetcher
	Extractor  core.Extractor
	Normalizer core.Normalizer
	Writer     *output.Writer
	Outputs    []output.Output
}

// Result describes a completed run.
type Result struct {
	Articles []core.Article
	Paths    []string
}

// New builds a Pipeline from cfg.
func New(cfg config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	fetcher := fetch.New(fetch.Options{
		UserAgent:          cfg.Source.UserAgent,
		Timeout:            cfg.Source.Timeout(),
		InsecureSkipVerify: cfg.Source.InsecureSkipVerify,
		RetryCount:         cfg.Source.RetryCount,
		RetryWait:          cfg.Source.RetryWait(),
		RetryMaxWait:       10 * cfg.Source.RetryWait(),
	})

	mode := normalize.ModeIndependent
	if cfg.Normalize.LegacyChain {
		mode = normalize.ModeLegacyChain
	}

	writer, err := output.New(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("initializing output writer: %w", err)
	}
	if cfg.Output.BaseName != "" {
		writer.BaseName = cfg.Output.BaseName
	}

	return &Pipeline{
		URL:        cfg.Source.URL,
		Fetcher:    fetcher,
		Extractor:  extract.New(cfg.Extract.StartMarker, cfg.Extract.EndMarker),
		Normalizer: normalize.New(mode),
		Writer:     writer,
		Outputs:    Outputs(cfg.Output),
	}, nil
}

// Outputs returns the outputs selected by cfg, in the order listed.
// CSV is the only timestamped output.
func Outputs(cfg config.OutputConfig) []output.Output {
	outputs := make([]output.Output, 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		switch f {
		case config.FormatCSV:
			outputs = append(outputs, output.Output{Renderer: render.NewCSVRenderer(), Timestamped: true})
		case config.FormatJSON:
			outputs = append(outputs, output.Output{Renderer: render.NewJSONRenderer(cfg.PrettyPrint)})
		case config.FormatMarkdown:
			outputs = append(outputs, output.Output{Renderer: render.NewMarkdownRenderer("")})
		case config.FormatPDF:
			outputs = append(outputs, output.Output{Renderer: render.NewPDFRenderer("")})
		}
	}
	return outputs
}

// Collect fetches the page and returns its normalized articles in page
// order. A page that cannot be fetched yields no articles and no error;
// a page whose embedded object cannot be found or decoded is an error.
func (p *Pipeline) Collect(ctx context.Context) ([]core.Article, error) {
	page, err := p.Fetcher.Fetch(ctx, p.URL)
	if errors.Is(err, fetch.ErrUnavailable) {
		slog.Warn("no access to the web page", "url", p.URL, "err", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	raws, err := p.Extractor.Extract(page.HTML)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	slog.Info("extracted records", "count", len(raws))

	articles := make([]core.Article, 0, len(raws))
	for _, raw := range raws {
		articles = append(articles, p.Normalizer.Normalize(raw))
	}
	return articles, nil
}

// Run collects the articles and writes every configured output. It returns
// ErrNoArticles, without touching the filesystem, when there is nothing
// to write.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	articles, err := p.Collect(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(articles) == 0 {
		return Result{}, ErrNoArticles
	}

	paths, err := p.Writer.Write(articles, p.Outputs)
	if err != nil {
		return Result{Articles: articles, Paths: paths}, fmt.Errorf("write: %w", err)
	}
	return Result{Articles: articles, Paths: paths}, nil
}
