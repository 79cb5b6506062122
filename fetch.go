// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/avatar/internal/diskcache"
)

// maxRedirects bounds the redirect chain of a single fetch.
const maxRedirects = 10

// DefaultMaxBodySize is the largest response body a Fetcher reads unless
// WithMaxBodySize says otherwise.
const DefaultMaxBodySize = 20 << 20

// Result is the outcome of a fetch.
type Result struct {
	Data      []byte
	Err       error
	FromCache bool // served from the disk cache without a new body download
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherOptions)

type fetcherOptions struct {
	client     *http.Client
	registerer prometheus.Registerer
	logger     *slog.Logger
	clock      clock.Clock
	indexSize  int
	maxBody    int64
}

// WithHTTPClient sets the HTTP client. Its CheckRedirect is replaced so
// that redirects are followed up to a fixed limit.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(o *fetcherOptions) {
		o.client = c
	}
}

// WithRegisterer registers the fetcher metrics on reg.
func WithRegisterer(reg prometheus.Registerer) FetcherOption {
	return func(o *fetcherOptions) {
		o.registerer = reg
	}
}

// WithFetcherLogger sets the logger. The package logger is used otherwise.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(o *fetcherOptions) {
		o.logger = l
	}
}

// WithFetcherClock sets the clock used for cache freshness.
func WithFetcherClock(c clock.Clock) FetcherOption {
	return func(o *fetcherOptions) {
		o.clock = c
	}
}

// WithCacheIndexSize sets how many cache entries are kept in memory.
func WithCacheIndexSize(n int) FetcherOption {
	return func(o *fetcherOptions) {
		o.indexSize = n
	}
}

// WithMaxBodySize sets the largest response body accepted. Larger bodies
// fail with a FetchError wrapping ErrTooLarge.
func WithMaxBodySize(n int64) FetcherOption {
	return func(o *fetcherOptions) {
		o.maxBody = n
	}
}

// Fetcher issues HTTP(S) requests for avatar images and consults an
// optional disk cache. One Fetcher is shared by many avatars; it is safe
// for concurrent use.
//
// Fetches cannot be cancelled by the fetcher itself. A caller that no
// longer wants a result simply ignores it.
type Fetcher struct {
	client    *http.Client
	clock     clock.Clock
	log       *slog.Logger
	metrics   *fetchMetrics
	indexSize int
	maxBody   int64
	group     singleflight.Group

	mu       sync.RWMutex
	cache    *diskcache.Cache
	cacheDir string
}

var (
	sharedOnce    sync.Once
	sharedFetcher *Fetcher
)

// SharedFetcher returns the process-wide fetcher, creating it on first
// use. Avatars without WithFetcher use it.
func SharedFetcher() *Fetcher {
	sharedOnce.Do(func() {
		sharedFetcher = NewFetcher()
	})
	return sharedFetcher
}

// NewFetcher creates a fetcher without a disk cache.
//
// Metric registration failures are logged and leave the fetcher with
// unregistered collectors.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	var o fetcherOptions
	for _, opt := range opts {
		opt(&o)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	if o.client != nil {
		c := *o.client
		client = &c
	}
	client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return ErrRedirectLoop
		}
		return nil
	}

	f := &Fetcher{
		client:    client,
		clock:     o.clock,
		log:       o.logger,
		indexSize: o.indexSize,
		maxBody:   o.maxBody,
	}
	if f.maxBody <= 0 {
		f.maxBody = DefaultMaxBodySize
	}
	if f.clock == nil {
		f.clock = clock.New()
	}
	if f.log == nil {
		f.log = Logger()
	}

	m, err := newFetchMetrics(o.registerer)
	if err != nil {
		f.log.Warn("avatar: fetch metrics not registered", "err", err)
		m, _ = newFetchMetrics(nil)
	}
	f.metrics = m
	return f
}

// AttachCache attaches a disk cache rooted at dir. The first directory
// wins: attaching the same directory again is a no-op, and attaching a
// different one returns ErrCacheAttached. Serving several avatars from
// distinct cache directories through one fetcher is not supported.
func (f *Fetcher) AttachCache(dir string) error {
	if dir == "" {
		return nil
	}
	dir = filepath.Clean(dir)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cache != nil {
		if f.cacheDir == dir {
			return nil
		}
		return fmt.Errorf("%w: keeping %s, ignoring %s", ErrCacheAttached, f.cacheDir, dir)
	}
	c, err := diskcache.Open(dir, diskcache.Options{IndexSize: f.indexSize})
	if err != nil {
		return fmt.Errorf("avatar: attach cache: %w", err)
	}
	f.cache = c
	f.cacheDir = dir
	f.log.Info("avatar: disk cache attached", "dir", dir)
	return nil
}

// CacheDir returns the attached cache directory, or "" if none.
func (f *Fetcher) CacheDir() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cacheDir
}

func (f *Fetcher) diskCache() *diskcache.Cache {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cache
}

// Get fetches url and blocks until the body or an error is available.
// Concurrent calls for the same URL share one request; the returned
// slice must not be modified. Cancelling ctx stops this caller waiting
// but never the shared request.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	r := f.fetch(ctx, url)
	return r.Data, r.Err
}

// Go fetches url on a new goroutine and calls done exactly once with the
// result, from that goroutine.
func (f *Fetcher) Go(ctx context.Context, url string, done func(Result)) {
	go func() {
		done(f.fetch(ctx, url))
	}()
}

func (f *Fetcher) fetch(ctx context.Context, url string) Result {
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(url, func() (any, error) {
		r, outcome := f.do(shared, url)
		f.metrics.requests.WithLabelValues(outcome).Inc()
		return r, nil
	})
	select {
	case res := <-ch:
		return res.Val.(Result)
	case <-ctx.Done():
		return Result{Err: &FetchError{URL: url, Err: ctx.Err()}}
	}
}

// do performs one fetch. With a cache attached it prefers the network but
// allows cache fallback: a fresh entry is served directly, a stale entry
// is revalidated, and a stored entry is served if the network fails.
func (f *Fetcher) do(ctx context.Context, url string) (Result, string) {
	log := f.log.With("url", url)
	cache := f.diskCache()

	var stored *diskcache.Entry
	if cache != nil {
		if e, ok := cache.Get(url); ok {
			if e.Fresh(f.clock.Now()) {
				f.metrics.cacheHits.Inc()
				log.Debug("avatar: cache hit")
				return Result{Data: e.Body, FromCache: true}, outcomeCache
			}
			stored = e
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Err: &FetchError{URL: url, Err: err}}, outcomeError
	}
	if stored != nil {
		if stored.ETag != "" {
			req.Header.Set("If-None-Match", stored.ETag)
		}
		if stored.LastModified != "" {
			req.Header.Set("If-Modified-Since", stored.LastModified)
		}
	}

	f.metrics.network.Inc()
	resp, err := f.client.Do(req)
	if err != nil {
		if stored != nil {
			log.Warn("avatar: network failed, serving cached copy", "err", err)
			return Result{Data: stored.Body, FromCache: true}, outcomeStale
		}
		return Result{Err: &FetchError{URL: url, Err: err}}, outcomeError
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified && stored != nil {
		if err := cache.Revalidated(url, resp.Header, f.clock.Now()); err != nil {
			log.Warn("avatar: cache update failed", "err", err)
		}
		f.metrics.cacheHits.Inc()
		log.Debug("avatar: cache revalidated")
		return Result{Data: stored.Body, FromCache: true}, outcomeRevalidated
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Err: &FetchError{URL: url, StatusCode: resp.StatusCode}}, outcomeError
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return Result{Err: &FetchError{URL: url, Err: err}}, outcomeError
	}
	if int64(len(body)) > f.maxBody {
		return Result{Err: &FetchError{URL: url, Err: fmt.Errorf("%w: body exceeds %d bytes", ErrTooLarge, f.maxBody)}}, outcomeError
	}
	f.metrics.bytes.Add(float64(len(body)))

	if cache != nil {
		if err := cache.Put(url, body, resp.Header, f.clock.Now()); err != nil {
			log.Warn("avatar: cache write failed", "err", err)
		}
	}
	log.Debug("avatar: fetched", "bytes", len(body), "status", resp.StatusCode)
	return Result{Data: body}, outcomeNetwork
}
