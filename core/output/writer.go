// Package output handles file naming and writing for reportpipe outputs.
// Timestamped outputs are named <base>_<YYYYMMDD-HHMM><ext> (e.g.
// articles_20240101-0930.csv); the rest use a fixed <base><ext> name and are
// overwritten on every run.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
)

const (
	DefaultBaseName = "articles"
	// TimestampLayout gives minute granularity; two runs within the same
	// minute write the same file name.
	TimestampLayout = "20060102-1504"
)

// Output pairs a renderer with its naming policy.
type Output struct {
	Renderer    core.Renderer
	Timestamped bool
}

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
	BaseName  string
	// Now returns the run time used in timestamped names.
	Now func() time.Time
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
// The directory itself is created on the first Write.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	return &Writer{
		OutputDir: outputDir,
		BaseName:  DefaultBaseName,
		Now:       time.Now,
	}, nil
}

// Write renders the articles through every output and writes each file,
// returning the written paths in output order. It does not special-case an
// empty collection. The first filesystem or render error stops the write.
func (w *Writer) Write(articles []core.Article, outputs []Output) ([]string, error) {
	if err := os.MkdirAll(w.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	runAt := w.Now()
	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		data, err := out.Renderer.Render(articles)
		if err != nil {
			return paths, fmt.Errorf("rendering %s: %w", out.Renderer.Extension(), err)
		}

		path := filepath.Join(w.OutputDir, w.FileName(out, runAt))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("writing file %s: %w", path, err)
		}
		slog.Info("wrote file", "path", path, "articles", len(articles), "bytes", len(data))
		paths = append(paths, path)
	}
	return paths, nil
}

// FileName returns the file name used for out at the given run time.
func (w *Writer) FileName(out Output, runAt time.Time) string {
	base := w.BaseName
	if base == "" {
		base = DefaultBaseName
	}
	if out.Timestamped {
		return base + "_" + runAt.Format(TimestampLayout) + out.Renderer.Extension()
	}
	return base + out.Renderer.Extension()
}
