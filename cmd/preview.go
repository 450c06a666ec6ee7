package cmd

import (
	"fmt"
	"io"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/pipeline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const defaultTitleWidth = 60

func newPreviewCmd(opts *options) *cobra.Command {
	var width int

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the articles found on the page without writing files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := pipeline.New(opts.cfg)
			if err != nil {
				return err
			}

			articles, err := p.Collect(cmd.Context())
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "There is a problem accessing %s\n", opts.cfg.Source.URL)
				return nil
			}

			renderTable(cmd.OutOrStdout(), articles, width)
			return nil
		},
	}

	previewCmd.Flags().IntVar(&width, "width", defaultTitleWidth, "Maximum title width in columns (0 disables truncation)")
	return previewCmd
}

func renderTable(w io.Writer, articles []core.Article, titleWidth int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Date", "Author", "Title"})

	for i, a := range articles {
		t.AppendRow(table.Row{i + 1, a.Date, a.Author, truncate(a.Title, titleWidth)})
	}

	t.AppendFooter(table.Row{"", "", "Total", len(articles)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// truncate shortens s to at most width display columns.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
