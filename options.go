// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"log/slog"

	"github.com/benbjohnson/clock"
)

// Option configures an Avatar during creation.
//
// Example:
//
//	a := avatar.New(
//	    avatar.WithSize(avatar.SizeLarge),
//	    avatar.WithAnimation(true),
//	    avatar.WithSource(avatar.NewURLSource("https://example.com/me.png")),
//	)
type Option func(*options)

// options holds optional configuration for Avatar creation.
type options struct {
	cfg        Config
	fetcher    *Fetcher
	clock      clock.Clock
	invalidate func()
	logger     *slog.Logger
	source     *Source
}

// defaultOptions returns the default avatar options.
func defaultOptions() options {
	return options{
		cfg: DefaultConfig(),
	}
}

// WithConfig replaces the whole display configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithShape sets the clip shape.
func WithShape(s Shape) Option {
	return func(o *options) {
		o.cfg.Shape = s
	}
}

// WithSize sets the display size. Invalid sizes select SizeMedium.
func WithSize(s Size) Option {
	return func(o *options) {
		o.cfg.Size = s
	}
}

// WithAnimation enables the hover rotation.
func WithAnimation(enabled bool) Option {
	return func(o *options) {
		o.cfg.Animation = enabled
	}
}

// WithCacheDir attaches a disk cache rooted at dir to the fetcher.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.cfg.CacheDir = dir
	}
}

// WithFetcher injects the shared fetcher. Without it the avatar uses
// SharedFetcher, created when first needed.
func WithFetcher(f *Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithClock sets the clock driving the loading pulse, playback and
// rotation. Tests pass a clock.Mock.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithInvalidate sets the function called whenever the avatar needs to be
// redrawn. It is called on the goroutine that drives the avatar.
func WithInvalidate(fn func()) Option {
	return func(o *options) {
		o.invalidate = fn
	}
}

// WithLogger sets the logger. The package logger is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSource sets the initial source, loaded by New.
func WithSource(src Source) Option {
	return func(o *options) {
		o.source = &src
	}
}
