// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"image"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// State is the acquisition state of an avatar.
type State uint8

const (
	// StateIdle is the initial state and the start of every load.
	StateIdle State = iota
	// StateRequesting means a network fetch is outstanding.
	StateRequesting
	// StateSucceeded means the last attempt produced an image.
	StateSucceeded
	// StateFailed means the last attempt failed; the placeholder is shown.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Avatar loads an image from bytes, a file or a URL and keeps everything
// needed to paint it: the scaled display buffer, the loading pulse and the
// hover rotation.
//
// Avatar is NOT safe for concurrent use. All methods must be called from
// the goroutine that owns it, typically the host's UI loop. Network
// results arrive asynchronously: the host waits on Wake and calls Update,
// which applies them in arrival order and advances the timers.
type Avatar struct {
	id         string
	cfg        Config
	fetcher    *Fetcher
	clock      clock.Clock
	invalidate func()
	log        *slog.Logger

	src     Source
	state   State
	err     error
	raw     image.Image // decoded still, before scaling
	play    *playback
	display *image.RGBA
	failed  bool // display holds the placeholder

	pulse   indicator
	rot     rotation
	turning bool // a sweep was running at the last Update

	gen     uint64 // identifies the outstanding network attempt
	inbox   *inbox
	unbind  func()
	closed  bool
	scaled  int // number of display buffer rescales, for tests
	decoded int // number of successful decodes, for tests
}

// New creates an avatar. If WithSource is given the source is loaded
// immediately.
func New(opts ...Option) *Avatar {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a := &Avatar{
		id:         uuid.NewString(),
		cfg:        o.cfg,
		fetcher:    o.fetcher,
		clock:      o.clock,
		invalidate: o.invalidate,
		inbox:      newInbox(),
	}
	a.cfg.Size = a.cfg.Size.orMedium()
	if a.clock == nil {
		a.clock = clock.New()
	}
	if a.invalidate == nil {
		a.invalidate = func() {}
	}
	l := o.logger
	if l == nil {
		l = Logger()
	}
	a.log = l.With("avatar", a.id)

	if a.cfg.CacheDir != "" {
		a.attachCache(a.cfg.CacheDir)
	}
	if o.source != nil {
		a.SetSource(*o.source)
	}
	return a
}

// ID returns the instance id used in log records.
func (a *Avatar) ID() string {
	return a.id
}

// Config returns the current display configuration.
func (a *Avatar) Config() Config {
	return a.cfg
}

// Source returns the current resolved source.
func (a *Avatar) Source() Source {
	return a.src
}

// State returns the acquisition state.
func (a *Avatar) State() State {
	return a.state
}

// IsLoading reports whether a network fetch is outstanding.
func (a *Avatar) IsLoading() bool {
	return a.state == StateRequesting
}

// Err returns the cause of the last failed attempt, or nil.
func (a *Avatar) Err() error {
	return a.err
}

// Display returns the buffer currently painted, or nil before the first
// load completes. It always has the configured size.
func (a *Avatar) Display() *image.RGBA {
	return a.display
}

// Pulse returns the loading-pulse radius, 0 unless loading.
func (a *Avatar) Pulse() int {
	return a.pulse.radius
}

// Angle returns the hover rotation angle in degrees.
func (a *Avatar) Angle() float64 {
	return a.rot.value(a.clock.Now())
}

// Rotating reports whether a hover sweep is in progress.
func (a *Avatar) Rotating() bool {
	return a.rot.running(a.clock.Now())
}

// Animated reports whether the current source plays as an animation.
func (a *Avatar) Animated() bool {
	return a.src.Format.Animated()
}

// SetShape sets the clip shape.
func (a *Avatar) SetShape(s Shape) {
	if a.cfg.Shape == s {
		return
	}
	a.cfg.Shape = s
	a.invalidate()
}

// SetSize sets the display size and rescales the current image. Invalid
// sizes select SizeMedium. Setting the current size does nothing.
func (a *Avatar) SetSize(s Size) {
	s = s.orMedium()
	if a.cfg.Size == s {
		return
	}
	a.cfg.Size = s
	a.rescale()
}

// SetAnimation enables or disables the hover rotation. Disabling it stops
// any sweep in progress.
func (a *Avatar) SetAnimation(enabled bool) {
	if a.cfg.Animation == enabled {
		return
	}
	a.cfg.Animation = enabled
	if !enabled {
		a.rot.reset()
		a.turning = false
		a.invalidate()
	}
}

// SetCacheDir attaches a disk cache rooted at dir to the fetcher. The
// first directory attached to a fetcher wins; see Fetcher.AttachCache.
func (a *Avatar) SetCacheDir(dir string) {
	a.cfg.CacheDir = dir
	if dir != "" {
		a.attachCache(dir)
	}
}

func (a *Avatar) attachCache(dir string) {
	if err := a.fetch().AttachCache(dir); err != nil {
		a.log.Warn("avatar: cache directory not attached", "dir", dir, "err", err)
	}
}

// fetch returns the injected fetcher or the shared one.
func (a *Avatar) fetch() *Fetcher {
	if a.fetcher == nil {
		a.fetcher = SharedFetcher()
	}
	return a.fetcher
}

// PointerEnter starts a sweep toward EndAngle from the current angle.
// It does nothing unless animation is enabled and the source is a still.
func (a *Avatar) PointerEnter() {
	if !a.rotationAllowed() {
		return
	}
	a.rot.enter(a.clock.Now())
	a.turning = true
	a.invalidate()
}

// PointerLeave starts a sweep back toward StartAngle from the current
// angle. It does nothing unless animation is enabled and the source is a
// still.
func (a *Avatar) PointerLeave() {
	if !a.rotationAllowed() {
		return
	}
	a.rot.leave(a.clock.Now())
	a.turning = true
	a.invalidate()
}

// rotationAllowed reports whether hover rotation applies. Playback of an
// animated source always takes precedence.
func (a *Avatar) rotationAllowed() bool {
	return !a.closed && a.cfg.Animation && !a.src.Format.Animated()
}

// Wake returns a channel that receives a value when results are waiting
// for Update.
func (a *Avatar) Wake() <-chan struct{} {
	return a.inbox.wake
}

// Update applies pending fetch results in arrival order, then advances the
// loading pulse, animation playback and hover rotation to the current
// time. Hosts call it from their UI loop on every tick and whenever Wake
// fires.
func (a *Avatar) Update() {
	if a.closed {
		return
	}
	for _, c := range a.inbox.drain() {
		a.complete(c)
	}

	now := a.clock.Now()
	if a.pulse.advance(now) {
		a.invalidate()
	}
	if a.play != nil && a.play.advance(now) {
		a.publish(a.play.current())
	}
	if a.turning {
		// One more redraw after the sweep ends drops the rotation.
		a.turning = a.rot.running(now)
		a.invalidate()
	}
}

// Close tears the avatar down: an outstanding fetch is abandoned (State
// returns to StateIdle), playback stops, hover events are unsubscribed,
// and fetch results that arrive later are discarded.
func (a *Avatar) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.inbox.close()
	a.abandon()
	if a.unbind != nil {
		a.unbind()
		a.unbind = nil
	}
	a.rot.reset()
	a.turning = false
}

// completion is a fetch result tagged with the attempt it belongs to.
type completion struct {
	gen    uint64
	result Result
}

// inbox carries fetch results from fetch goroutines to the owning
// goroutine.
type inbox struct {
	mu     sync.Mutex
	items  []completion
	closed bool
	wake   chan struct{}
}

func newInbox() *inbox {
	return &inbox{wake: make(chan struct{}, 1)}
}

// post queues c unless the inbox is closed.
func (in *inbox) post(c completion) {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return
	}
	in.items = append(in.items, c)
	in.mu.Unlock()

	select {
	case in.wake <- struct{}{}:
	default:
	}
}

func (in *inbox) drain() []completion {
	in.mu.Lock()
	defer in.mu.Unlock()
	items := in.items
	in.items = nil
	return items
}

func (in *inbox) close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
	in.items = nil
}
