// Package config provides configuration management for reportpipe.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingURL        = errors.New("source.url is required")
	ErrInvalidURL        = errors.New("source.url must be an absolute http(s) URL")
	ErrInvalidTimeout    = errors.New("source.timeout_sec must be at least 1")
	ErrInvalidRetryCount = errors.New("source.retry_count must be between 0 and 10")
	ErrInvalidRetryWait  = errors.New("source.retry_wait_ms must be non-negative")
	ErrMissingMarker     = errors.New("extract.start_marker and extract.end_marker are required")
	ErrMissingOutputDir  = errors.New("output.dir is required")
	ErrNoFormats         = errors.New("output.formats must name at least one format")
	ErrUnknownFormat     = errors.New("output.formats entries must be one of: csv, json, markdown, pdf")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrUnsupportedFile   = errors.New("config file must be .yaml, .yml, .json or .json5")
)

// Output formats.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
)

// Environment variables read by ApplyEnv.
const (
	EnvURL       = "REPORTPIPE_URL"
	EnvOutputDir = "REPORTPIPE_OUTPUT_DIR"
	EnvInsecure  = "REPORTPIPE_INSECURE"
	EnvLogLevel  = "REPORTPIPE_LOG_LEVEL"
)

// Config represents the complete pipeline configuration. It is passed by
// value into the pipeline and never modified after construction.
type Config struct {
	Source    SourceConfig    `yaml:"source" json:"source"`
	Extract   ExtractConfig   `yaml:"extract" json:"extract"`
	Normalize NormalizeConfig `yaml:"normalize" json:"normalize"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// SourceConfig describes the page to fetch and how.
type SourceConfig struct {
	URL       string `yaml:"url" json:"url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	// InsecureSkipVerify disables TLS certificate checks. Off by default.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
	TimeoutSec         int  `yaml:"timeout_sec" json:"timeout_sec"`
	RetryCount         int  `yaml:"retry_count" json:"retry_count"`
	RetryWaitMs        int  `yaml:"retry_wait_ms" json:"retry_wait_ms"`
}

// ExtractConfig holds the markers bounding the embedded object.
type ExtractConfig struct {
	StartMarker string `yaml:"start_marker" json:"start_marker"`
	EndMarker   string `yaml:"end_marker" json:"end_marker"`
}

// NormalizeConfig selects how empty fields are defaulted.
type NormalizeConfig struct {
	LegacyChain bool `yaml:"legacy_chain" json:"legacy_chain"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Dir         string   `yaml:"dir" json:"dir"`
	BaseName    string   `yaml:"base_name" json:"base_name"`
	Formats     []string `yaml:"formats" json:"formats"`
	PrettyPrint bool     `yaml:"pretty_print" json:"pretty_print"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceConfig{
			URL: "https://www.ampereanalysis.com/reports",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.149 " +
				"Safari/537.36",
			TimeoutSec:  30,
			RetryCount:  2,
			RetryWaitMs: 500,
		},
		Extract: ExtractConfig{
			StartMarker: "report_obj = ",
			EndMarker:   "];",
		},
		Output: OutputConfig{
			Dir:      "data",
			BaseName: "articles",
			Formats:  []string{FormatCSV, FormatJSON},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML or JSON5 file and merges it over Default. Fields the
// file leaves unset keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var fromFile Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json", ".json5":
		if err := json5.Unmarshal(data, &fromFile); err != nil {
			return cfg, fmt.Errorf("failed to parse JSON5: %w", err)
		}
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("failed to merge config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyEnv returns a copy of c with the REPORTPIPE_* environment variables
// applied on top.
func (c Config) ApplyEnv() (Config, error) {
	if v := os.Getenv(EnvURL); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvInsecure); v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvInsecure, err)
		}
		c.Source.InsecureSkipVerify = insecure
	}
	c.Output.Formats = append([]string(nil), c.Output.Formats...)
	return c, nil
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Source.URL == "" {
		return ErrMissingURL
	}
	u, err := url.Parse(c.Source.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, c.Source.URL)
	}

	if c.Source.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.Source.RetryCount < 0 || c.Source.RetryCount > 10 {
		return ErrInvalidRetryCount
	}
	if c.Source.RetryWaitMs < 0 {
		return ErrInvalidRetryWait
	}

	if c.Extract.StartMarker == "" || c.Extract.EndMarker == "" {
		return ErrMissingMarker
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}
	if len(c.Output.Formats) == 0 {
		return ErrNoFormats
	}
	for _, f := range c.Output.Formats {
		switch f {
		case FormatCSV, FormatJSON, FormatMarkdown, FormatPDF:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// Timeout returns the request timeout.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// RetryWait returns the wait between retries.
func (s SourceConfig) RetryWait() time.Duration {
	return time.Duration(s.RetryWaitMs) * time.Millisecond
}

// HasFormat reports whether format is among the configured outputs.
func (o OutputConfig) HasFormat(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// WithFormat returns a copy of o with format appended if missing.
func (o OutputConfig) WithFormat(format string) OutputConfig {
	if o.HasFormat(format) {
		return o
	}
	o.Formats = append(append([]string(nil), o.Formats...), format)
	return o
}

// String returns a string representation of the config.
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{URL: %s, Formats: %v, Output: %s, Insecure: %t}",
		c.Source.URL,
		c.Output.Formats,
		c.Output.Dir,
		c.Source.InsecureSkipVerify,
	)
}
