// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"image"
	"image/gif"
	"time"

	xdraw "golang.org/x/image/draw"
)

// Frame delays below minFrameDelay are played at defaultFrameDelay, as
// browsers do for GIFs authored with a zero delay.
const (
	minFrameDelay     = 20 * time.Millisecond
	defaultFrameDelay = 100 * time.Millisecond
)

// playback advances the frames of an animated image using the delays
// stored in the image itself. It loops indefinitely.
type playback struct {
	frames []*image.RGBA
	delays []time.Duration
	index  int
	next   time.Time
	cycle  time.Duration
}

// newPlayback composites the GIF frames onto its logical screen and
// schedules the first advance relative to now.
func newPlayback(g *gif.GIF, now time.Time) *playback {
	p := &playback{
		frames: compositeFrames(g),
		delays: make([]time.Duration, len(g.Image)),
	}
	for i := range g.Image {
		d := defaultFrameDelay
		if i < len(g.Delay) {
			d = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		if d < minFrameDelay {
			d = defaultFrameDelay
		}
		p.delays[i] = d
		p.cycle += d
	}
	p.next = now.Add(p.delays[0])
	return p
}

// current returns the frame being shown.
func (p *playback) current() *image.RGBA {
	return p.frames[p.index]
}

// len returns the number of frames.
func (p *playback) len() int {
	return len(p.frames)
}

// advance moves to the frame due at now. It reports whether the current
// frame changed.
func (p *playback) advance(now time.Time) bool {
	if len(p.frames) < 2 || now.Before(p.next) {
		return false
	}
	// Skip whole cycles after a long pause instead of replaying them.
	if behind := now.Sub(p.next); behind > p.cycle {
		p.next = p.next.Add(behind / p.cycle * p.cycle)
	}
	prev := p.index
	for !now.Before(p.next) {
		p.index = (p.index + 1) % len(p.frames)
		p.next = p.next.Add(p.delays[p.index])
	}
	return p.index != prev
}

// compositeFrames renders every GIF frame onto a full canvas, applying the
// disposal method of the previous frame.
func compositeFrames(g *gif.GIF) []*image.RGBA {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		for _, f := range g.Image {
			bounds = bounds.Union(f.Bounds())
		}
	}

	canvas := image.NewRGBA(bounds)
	frames := make([]*image.RGBA, 0, len(g.Image))
	for i, f := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var saved *image.RGBA
		if disposal == gif.DisposalPrevious {
			saved = cloneRGBA(canvas)
		}

		xdraw.Draw(canvas, f.Bounds(), f, f.Bounds().Min, xdraw.Over)
		frames = append(frames, cloneRGBA(canvas))

		switch disposal {
		case gif.DisposalBackground:
			xdraw.Draw(canvas, f.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return frames
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
