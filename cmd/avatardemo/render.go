// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogpu/gg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gogpu/avatar"
)

type renderOptions struct {
	configPath string
	source     string
	size       string
	shape      string
	animate    bool
	cacheDir   string
	out        string
	frames     int
	frameStep  time.Duration
	timeout    time.Duration
	metrics    bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an avatar to PNG",
		Long: `render loads --source ("-" reads encoded bytes from stdin), waits for any
network fetch to finish and writes the clipped avatar to --out. For
animated sources, --frames writes that many numbered files, advancing
playback by --frame-step between them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, &cfg); err != nil {
				return err
			}
			return runRender(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&opts.configPath, "config", "c", "", "YAML file with shape, size, animation and cache_dir")
	fl.StringVarP(&opts.source, "source", "s", "", "file path, http(s) URL, or - for stdin")
	fl.StringVar(&opts.size, "size", "medium", "large, medium, small or WxH")
	fl.StringVar(&opts.shape, "shape", "circle", "circle or rounded")
	fl.BoolVar(&opts.animate, "animate", false, "enable hover rotation")
	fl.StringVar(&opts.cacheDir, "cache-dir", "", "directory for the HTTP disk cache")
	fl.StringVarP(&opts.out, "out", "o", "avatar.png", "output file")
	fl.IntVar(&opts.frames, "frames", 1, "number of frames to write for animated sources")
	fl.DurationVar(&opts.frameStep, "frame-step", 100*time.Millisecond, "playback time between frames")
	fl.DurationVar(&opts.timeout, "timeout", 30*time.Second, "how long to wait for a network fetch")
	fl.BoolVar(&opts.metrics, "metrics", false, "print fetch counters after rendering")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

// apply overrides cfg with the flags given on the command line.
func (o *renderOptions) apply(cmd *cobra.Command, cfg *avatar.Config) error {
	fl := cmd.Flags()
	if fl.Changed("size") {
		s, err := avatar.ParseSize(o.size)
		if err != nil {
			return err
		}
		cfg.Size = s
	}
	if fl.Changed("shape") {
		s, err := avatar.ParseShape(o.shape)
		if err != nil {
			return err
		}
		cfg.Shape = s
	}
	if fl.Changed("animate") {
		cfg.Animation = o.animate
	}
	if fl.Changed("cache-dir") {
		cfg.CacheDir = o.cacheDir
	}
	if o.frames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", o.frames)
	}
	return nil
}

func runRender(ctx context.Context, stdin io.Reader, stdout io.Writer, cfg avatar.Config, opts renderOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reg := prometheus.NewRegistry()
	fetcher := avatar.NewFetcher(avatar.WithRegisterer(reg))

	// Playback follows a mock clock so that frames are evenly spaced
	// regardless of how long encoding takes.
	clk := clock.NewMock()
	clk.Set(time.Now())

	a := avatar.New(
		avatar.WithConfig(cfg),
		avatar.WithFetcher(fetcher),
		avatar.WithClock(clk),
	)
	defer a.Close()

	if opts.source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		a.SetBytes(data)
	} else {
		a.SetURL(opts.source)
	}

	if err := await(ctx, a, opts.timeout); err != nil {
		return err
	}
	if a.State() == avatar.StateFailed {
		fmt.Fprintf(stdout, "load failed, writing placeholder: %v\n", a.Err())
	}

	n := 1
	if a.Animated() {
		n = opts.frames
	}
	for i := range n {
		if i > 0 {
			clk.Add(opts.frameStep)
			a.Update()
		}
		path := framePath(opts.out, i, n)
		if err := savePNG(a, path); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s (%s, %s)\n", path, a.Config().Size, a.Config().Shape)
	}

	if opts.metrics {
		return printMetrics(stdout, reg)
	}
	return nil
}

// await drives the avatar until no fetch is outstanding.
func await(ctx context.Context, a *avatar.Avatar, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for a.IsLoading() {
		select {
		case <-a.Wake():
			a.Update()
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("fetch did not finish within %v", timeout)
			}
			return ctx.Err()
		}
	}
	return nil
}

func savePNG(a *avatar.Avatar, path string) error {
	size := a.Config().Size
	dc := gg.NewContext(size.Width, size.Height)
	defer func() { _ = dc.Close() }()
	if err := a.Render(dc); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// framePath numbers the output file when more than one frame is written.
func framePath(out string, i, n int) string {
	if n == 1 {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(out, ext), i, ext)
}

func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += fmt.Sprintf("{%s=%q}", lp.GetName(), lp.GetValue())
			}
			fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
		}
	}
	return nil
}
