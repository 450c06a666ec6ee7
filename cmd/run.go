package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gaurav-prasanna/reportpipe/config"
	"github.com/gaurav-prasanna/reportpipe/core/pipeline"
)

// runPipeline runs one fetch → extract → normalize → write pass and reports
// the written files on out. A page that yields no articles is reported and
// is not an error.
func runPipeline(ctx context.Context, out io.Writer, cfg config.Config) error {
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if errors.Is(err, pipeline.ErrNoArticles) {
		fmt.Fprintf(out, "There is a problem accessing %s\n", cfg.Source.URL)
		return nil
	}
	if err != nil {
		return err
	}

	for _, path := range result.Paths {
		fmt.Fprintf(out, "✓ Written: %s\n", path)
	}
	return nil
}
