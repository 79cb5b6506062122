// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRotationIdle(t *testing.T) {
	var r rotation
	assert.Equal(t, StartAngle, r.value(epoch))
	assert.False(t, r.running(epoch))
}

func TestRotationFullSweep(t *testing.T) {
	var r rotation
	r.enter(epoch)
	assert.Equal(t, fullSweep, r.duration)
	assert.True(t, r.forward())
	assert.True(t, r.running(epoch))
	assert.InDelta(t, 180, r.value(epoch.Add(fullSweep/2)), 1e-9)
	assert.InDelta(t, EndAngle, r.value(epoch.Add(fullSweep)), 1e-9)
	assert.False(t, r.running(epoch.Add(fullSweep)))

	// Leaving after a completed sweep takes the full duration back.
	r.leave(epoch.Add(time.Second))
	assert.Equal(t, fullSweep, r.duration)
	assert.False(t, r.forward())
}

func TestRotationReverseMidSweep(t *testing.T) {
	var r rotation
	r.enter(epoch)
	mid := epoch.Add(fullSweep / 3) // 120 degrees
	r.leave(mid)

	assert.InDelta(t, 120, r.from, 1e-9)
	assert.Equal(t, StartAngle, r.to)
	assert.Equal(t, fullSweep/3, r.duration)
	assert.InDelta(t, 120, r.value(mid), 1e-9)
	assert.InDelta(t, 0, r.value(mid.Add(fullSweep/3)), 1e-9)

	// Re-entering mid-way continues from the live value.
	again := mid.Add(fullSweep / 6) // 60 degrees
	r.enter(again)
	assert.InDelta(t, 60, r.value(again), 1e-9)
	assert.Equal(t, time.Duration(float64(fullSweep)*300/360), r.duration)
}

func TestRotationTraceContinuous(t *testing.T) {
	var r rotation
	const step = 10 * time.Millisecond
	maxStep := 360 * float64(step) / float64(fullSweep)

	now := epoch
	r.enter(now)
	prev := r.value(now)
	for i := range 60 {
		now = now.Add(step)
		if i == 20 {
			r.leave(now)
		}
		v := r.value(now)
		assert.LessOrEqual(t, math.Abs(v-prev), maxStep+1e-9, "jump at step %d: %v -> %v", i, prev, v)
		assert.GreaterOrEqual(t, v, StartAngle)
		assert.LessOrEqual(t, v, EndAngle)
		prev = v
	}
	assert.Equal(t, StartAngle, prev)
}

func TestRotationEnterAtEnd(t *testing.T) {
	var r rotation
	r.enter(epoch)
	done := epoch.Add(fullSweep)
	r.enter(done)
	assert.Equal(t, time.Duration(0), r.duration)
	assert.False(t, r.running(done))
	assert.Equal(t, EndAngle, r.value(done))
}

func TestRotationReset(t *testing.T) {
	var r rotation
	r.enter(epoch)
	r.reset()
	assert.False(t, r.running(epoch))
	assert.Equal(t, StartAngle, r.value(epoch))
}
