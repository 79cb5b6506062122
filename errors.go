// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"errors"
	"fmt"
)

// Acquisition errors. Every kind ends the current attempt the same way:
// the placeholder is shown and the state becomes StateFailed.
var (
	// ErrSourceUnresolvable is returned when the source is empty or invalid.
	ErrSourceUnresolvable = errors.New("avatar: source unresolvable")

	// ErrDecode is returned when bytes do not parse as a supported still
	// or animated image.
	ErrDecode = errors.New("avatar: decode failed")

	// ErrLocalAccess is returned when a local path is missing or is not a
	// regular file.
	ErrLocalAccess = errors.New("avatar: local file not accessible")

	// ErrCacheAttached is returned by Fetcher.AttachCache when a cache
	// rooted at a different directory is already attached.
	ErrCacheAttached = errors.New("avatar: a different cache directory is already attached")
)

// FetchError describes a failed network fetch: a transport failure, a
// non-success status or a redirect loop.
type FetchError struct {
	URL        string
	StatusCode int   // 0 when no response was received
	Err        error // underlying transport error, if any
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("avatar: fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("avatar: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrRedirectLoop is wrapped by a FetchError when a request exceeds the
// redirect limit.
var ErrRedirectLoop = errors.New("avatar: redirect loop")

// ErrTooLarge is wrapped when a body exceeds the byte limit or an image
// declares more pixels than the decoder accepts.
var ErrTooLarge = errors.New("avatar: image too large")
