// Package cmd implements the CLI commands for reportpipe using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaurav-prasanna/reportpipe/config"
	"github.com/spf13/cobra"
)

// options holds the flag values shared by every command and the
// configuration resolved from them before a command runs.
type options struct {
	configPath     string
	logLevel       string
	url            string
	insecure       bool
	legacyDefaults bool
	retries        int
	timeoutSec     int

	outputDir string
	markdown  bool
	pdf       bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "reportpipe",
		Short: "reportpipe — scrape a report listing page into CSV and JSON",
		Long: `reportpipe fetches a report listing page, decodes the JavaScript object
literal embedded in it and writes the listed articles as CSV and JSON
(optionally Markdown and PDF).

Examples:
  reportpipe
  reportpipe --url https://example.com/reports --output_dir ./out --markdown
  reportpipe --config reportpipe.yaml
  reportpipe preview --width 40`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), cfg.Logging.Level)
			opts.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), cmd.OutOrStdout(), opts.cfg)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (.yaml, .yml, .json or .json5)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&opts.url, "url", "", "Listing page to scrape")
	pf.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	pf.BoolVar(&opts.legacyDefaults, "legacy-defaults", false, "Default only the first empty field of each article")
	pf.IntVar(&opts.retries, "retries", 0, "Retries on transient fetch errors (0-10)")
	pf.IntVar(&opts.timeoutSec, "timeout", 0, "Request timeout in seconds")

	f := rootCmd.Flags()
	f.StringVar(&opts.outputDir, "output_dir", "", "Output directory (default: data)")
	f.BoolVar(&opts.markdown, "markdown", false, "Also write a Markdown listing")
	f.BoolVar(&opts.pdf, "pdf", false, "Also write a PDF listing")

	rootCmd.AddCommand(newPreviewCmd(opts))
	return rootCmd
}

// resolve layers the configuration: built-in defaults, then the config
// file, then REPORTPIPE_* environment variables, then explicit flags.
func (o *options) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	cfg, err := cfg.ApplyEnv()
	if err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Source.URL = o.url
	}
	if flags.Changed("insecure") {
		cfg.Source.InsecureSkipVerify = o.insecure
	}
	if flags.Changed("retries") {
		cfg.Source.RetryCount = o.retries
	}
	if flags.Changed("timeout") {
		cfg.Source.TimeoutSec = o.timeoutSec
	}
	if flags.Changed("legacy-defaults") {
		cfg.Normalize.LegacyChain = o.legacyDefaults
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("output_dir") {
		cfg.Output.Dir = o.outputDir
	}
	if o.markdown {
		cfg.Output = cfg.Output.WithFormat(config.FormatMarkdown)
	}
	if o.pdf {
		cfg.Output = cfg.Output.WithFormat(config.FormatPDF)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
