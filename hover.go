// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

// HoverSource delivers pointer enter and leave events for the area an
// avatar occupies. The callback must be invoked on the goroutine that owns
// the avatar. OnHover returns a function that removes the subscription.
type HoverSource interface {
	OnHover(fn func(entered bool)) (unsubscribe func())
}

// Bind subscribes the avatar to src, replacing any previous binding.
// Close removes the subscription.
func (a *Avatar) Bind(src HoverSource) {
	if a.closed {
		return
	}
	if a.unbind != nil {
		a.unbind()
	}
	a.unbind = src.OnHover(func(entered bool) {
		if entered {
			a.PointerEnter()
		} else {
			a.PointerLeave()
		}
	})
}
