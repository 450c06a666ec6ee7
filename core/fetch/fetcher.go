// Package fetch implements the Fetcher interface.
// It performs a single HTTP GET with a browser identity, an explicit TLS
// verification setting, a timeout and bounded retries.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.149 " +
		"Safari/537.36"
)

// ErrUnavailable is returned for any fetch that did not produce a 200
// response. Callers treat it as "no data" rather than a fatal error.
var ErrUnavailable = errors.New("page unavailable")

// Options configures an HTTPFetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	RetryCount         int
	RetryWait          time.Duration
	RetryMaxWait       time.Duration
}

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client *resty.Client
}

// New creates an HTTPFetcher from opts, filling unset fields with defaults.
func New(opts Options) *HTTPFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryMaxWait < opts.RetryWait {
		opts.RetryMaxWait = opts.RetryWait
	}

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.RetryCount)
	client.SetRetryWaitTime(opts.RetryWait)
	client.SetRetryMaxWaitTime(opts.RetryMaxWait)
	client.AddRetryCondition(shouldRetry)

	if opts.InsecureSkipVerify {
		slog.Warn("TLS certificate verification is disabled; responses can be intercepted")
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in via configuration
	}

	return &HTTPFetcher{client: client}
}

// Fetch retrieves the page text of the given URL. Every failure, whether a
// transport error or a non-200 status, wraps ErrUnavailable.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	slog.Info("sending request", "url", url)

	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", ErrUnavailable, url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", ErrUnavailable, resp.StatusCode(), url)
	}

	slog.Info("received page", "url", url, "bytes", len(resp.Body()), "elapsed", resp.Time())
	return &core.FetchResult{
		URL:        url,
		StatusCode: resp.StatusCode(),
		HTML:       string(resp.Body()),
	}, nil
}

// shouldRetry retries transport errors and statuses that usually clear up
// on their own.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	switch resp.StatusCode() {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return resp.StatusCode() >= http.StatusInternalServerError
}
