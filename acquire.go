// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// SetSource switches to src and loads it. Any outstanding fetch for the
// previous source is abandoned; its result will be discarded. Setting the
// source that is already being fetched is ignored.
func (a *Avatar) SetSource(src Source) {
	if a.closed {
		return
	}
	src = Resolve(src)
	if a.state == StateRequesting && src.key() == a.src.key() {
		a.log.Debug("avatar: source unchanged, request outstanding")
		return
	}
	a.abandon()
	a.src = src
	if a.src.Format.Animated() {
		a.rot.reset()
		a.turning = false
	}
	a.log.Debug("avatar: source set", "kind", a.src.Kind, "format", a.src.Format, "source", a.src.describe())
	a.load()
}

// SetURL sets a local path or an http(s) URL as the source.
func (a *Avatar) SetURL(s string) {
	a.SetSource(NewURLSource(s))
}

// SetBytes sets encoded image bytes as the source.
func (a *Avatar) SetBytes(data []byte) {
	a.SetSource(BytesSource(data))
}

// SetImage sets an already decoded still image as the source.
func (a *Avatar) SetImage(img image.Image) {
	a.SetSource(ImageSource(img))
}

// Refresh loads the current source again. It is ignored while a fetch is
// outstanding.
func (a *Avatar) Refresh() {
	if a.closed {
		return
	}
	a.load()
}

// abandon forgets the current source and its outstanding attempt.
func (a *Avatar) abandon() {
	a.gen++
	a.pulse.stop()
	if a.state == StateRequesting {
		a.state = StateIdle
	}
	a.play = nil
	a.raw = nil
}

// load starts one acquisition attempt for the current source.
func (a *Avatar) load() {
	if a.state == StateRequesting {
		a.log.Debug("avatar: load ignored, request outstanding")
		return
	}
	a.state = StateIdle
	a.err = nil

	switch a.src.Kind {
	case SourceBytes:
		if a.src.Image != nil {
			a.raw = a.src.Image
			a.publish(a.raw)
			a.succeed()
			return
		}
		a.decode(a.src.Data)
	case SourcePath:
		a.loadPath(a.src.Path)
	case SourceURL:
		a.request(a.src.URL)
	default:
		a.fail(ErrSourceUnresolvable)
	}
}

// loadPath reads and decodes a local file synchronously. Local loads never
// enter StateRequesting.
func (a *Avatar) loadPath(path string) {
	fi, err := os.Stat(path)
	if err != nil {
		a.fail(fmt.Errorf("%w: %w", ErrLocalAccess, err))
		return
	}
	if !fi.Mode().IsRegular() {
		a.fail(fmt.Errorf("%w: %s is not a regular file", ErrLocalAccess, path))
		return
	}
	if fi.Size() > DefaultMaxBodySize {
		a.fail(fmt.Errorf("%w: %w: %d bytes", ErrLocalAccess, ErrTooLarge, fi.Size()))
		return
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		a.fail(fmt.Errorf("%w: %w", ErrLocalAccess, err))
		return
	}
	a.decode(data)
}

// request enters StateRequesting and starts the fetch. The result is
// posted to the inbox and applied by Update.
func (a *Avatar) request(url string) {
	a.gen++
	gen := a.gen
	a.state = StateRequesting
	a.pulse.start(a.clock.Now())
	a.invalidate()
	a.log.Debug("avatar: requesting", "url", url)

	in := a.inbox
	a.fetch().Go(context.Background(), url, func(r Result) {
		in.post(completion{gen: gen, result: r})
	})
}

// complete applies a fetch result. Results of abandoned attempts are
// dropped.
func (a *Avatar) complete(c completion) {
	if c.gen != a.gen || a.state != StateRequesting {
		a.log.Debug("avatar: stale fetch result dropped")
		return
	}
	a.pulse.stop()
	if c.result.Err != nil {
		a.fail(c.result.Err)
		return
	}
	a.decode(c.result.Data)
}

// decode turns raw bytes into the display buffer, starting playback for
// animated sources.
func (a *Avatar) decode(data []byte) {
	if a.src.Format.Animated() {
		g, err := decodeAnimated(data)
		if err != nil {
			a.fail(err)
			return
		}
		a.play = newPlayback(g, a.clock.Now())
		a.decoded++
		a.publish(a.play.current())
		a.succeed()
		a.log.Debug("avatar: playback started", "frames", a.play.len())
		return
	}

	img, err := decodeStill(data, a.src.Format)
	if err != nil {
		a.fail(err)
		return
	}
	a.decoded++
	a.raw = img
	a.publish(img)
	a.succeed()
}

func (a *Avatar) succeed() {
	a.state = StateSucceeded
	a.failed = false
	a.log.Debug("avatar: loaded", "size", a.cfg.Size)
}

// fail ends the attempt with the placeholder. There is no retry.
func (a *Avatar) fail(err error) {
	a.pulse.stop()
	a.play = nil
	a.raw = nil
	a.err = err
	a.state = StateFailed
	a.failed = true
	a.display = placeholder(a.cfg.Size)
	a.log.Warn("avatar: load failed", "source", a.src.describe(), "err", err)
	a.invalidate()
}

// publish scales img to the configured size and makes it the display
// buffer.
func (a *Avatar) publish(img image.Image) {
	a.display = scale(img, a.cfg.Size)
	a.scaled++
	a.invalidate()
}

// rescale re-derives the display buffer after a size change.
func (a *Avatar) rescale() {
	switch {
	case a.play != nil:
		a.publish(a.play.current())
	case a.raw != nil:
		a.publish(a.raw)
	case a.failed:
		a.display = placeholder(a.cfg.Size)
		a.invalidate()
	}
}
