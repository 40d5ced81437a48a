// SPDX-License-Identifier: MIT

// Package fetch retrieves playlist and EPG source payloads with
// bounded concurrency and per-source timeouts.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// maxBodySize bounds a single source payload.
const maxBodySize = 100 * 1024 * 1024

// Fetcher retrieves the raw bytes of one source URL.
type Fetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}

// HTTPFetcher fetches http(s) sources, throttled by a shared rate
// limiter. file:// URLs are read from disk, which keeps local playlist
// files and tests on the same code path.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTP returns a fetcher. ratePerSec <= 0 disables throttling.
func NewHTTP(ratePerSec float64) *HTTPFetcher {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &HTTPFetcher{
		client:  &http.Client{},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Fetch retrieves one source. The context carries the per-source
// deadline; a timed-out source returns the context error.
func (f *HTTPFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	if u.Scheme == "file" {
		return os.ReadFile(filepath.Clean(u.Path))
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "m3uforge/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Result is the outcome for one source, keyed by its position in the
// source configuration.
type Result struct {
	Index int
	URL   string
	Data  []byte
	Err   error
}

// All fetches every source with at most concurrency in flight and the
// given per-source timeout. Results are returned in configuration
// order regardless of completion order, so downstream source ordering
// stays deterministic. Per-source failures are carried in the result,
// never returned as an error.
func All(ctx context.Context, f Fetcher, urls []string, concurrency int, timeout time.Duration) []Result {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]Result, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, src := range urls {
		g.Go(func() error {
			reqCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			data, err := f.Fetch(reqCtx, src)
			results[i] = Result{Index: i, URL: src, Data: data, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
