// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"math"
	"time"
)

// Rotation sweep bounds, in degrees, and the duration of a full sweep.
const (
	StartAngle = 0.0
	EndAngle   = 360.0

	fullSweep = 540 * time.Millisecond
)

// rotation is a one-shot linear interpolation of the hover angle.
// Every sweep restarts from the live value, so reversing direction
// mid-sweep never jumps.
type rotation struct {
	from, to float64
	start    time.Time
	duration time.Duration
}

// value returns the interpolated angle at now.
func (r *rotation) value(now time.Time) float64 {
	if r.duration <= 0 {
		return r.to
	}
	elapsed := now.Sub(r.start)
	if elapsed <= 0 {
		return r.from
	}
	if elapsed >= r.duration {
		return r.to
	}
	t := float64(elapsed) / float64(r.duration)
	return r.from + (r.to-r.from)*t
}

// running reports whether a sweep is in progress at now.
func (r *rotation) running(now time.Time) bool {
	return r.duration > 0 && now.Sub(r.start) < r.duration
}

// forward reports whether the last sweep heads toward EndAngle.
func (r *rotation) forward() bool {
	return r.to == EndAngle
}

// enter sweeps toward EndAngle.
func (r *rotation) enter(now time.Time) {
	r.sweep(now, EndAngle)
}

// leave sweeps back toward StartAngle.
func (r *rotation) leave(now time.Time) {
	r.sweep(now, StartAngle)
}

// sweep restarts from the live value toward target. The duration is the
// full-sweep duration scaled by the remaining angular distance.
func (r *rotation) sweep(now time.Time, target float64) {
	cv := r.value(now)
	r.from = cv
	r.to = target
	r.start = now
	r.duration = time.Duration(float64(fullSweep) * math.Abs(target-cv) / (EndAngle - StartAngle))
}

// reset stops any sweep and returns to StartAngle.
func (r *rotation) reset() {
	*r = rotation{}
}
