// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import "time"

// Loading pulse parameters.
const (
	pulsePeriod = 50 * time.Millisecond
	maxPulse    = 9
)

// indicator is the loading-pulse clock. While active, the radius grows by
// one every pulsePeriod and wraps to zero after maxPulse.
type indicator struct {
	active bool
	radius int
	last   time.Time
}

func (in *indicator) start(now time.Time) {
	in.active = true
	in.radius = 0
	in.last = now
}

func (in *indicator) stop() {
	in.active = false
	in.radius = 0
}

// advance applies every period elapsed since the last tick. It reports
// whether at least one tick happened.
func (in *indicator) advance(now time.Time) bool {
	if !in.active {
		return false
	}
	ticks := int(now.Sub(in.last) / pulsePeriod)
	if ticks <= 0 {
		return false
	}
	in.last = in.last.Add(time.Duration(ticks) * pulsePeriod)
	in.radius = (in.radius + ticks) % (maxPulse + 1)
	return true
}
