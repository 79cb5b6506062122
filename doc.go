// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package avatar displays a clipped, optionally animated avatar image.
//
// # Overview
//
// An Avatar takes an image source (encoded bytes, a local file or an
// http(s) URL), acquires and decodes it, scales it to a fixed display size
// and paints it clipped to a circle or rounded square. While a network
// fetch is outstanding a pulsing dot is drawn on top; any failure shows a
// flat gray placeholder. Animated GIFs play with their own frame timing,
// and still images can rotate on pointer hover.
//
// # Quick Start
//
//	f := avatar.NewFetcher()
//	_ = f.AttachCache(filepath.Join(os.TempDir(), "avatars"))
//
//	a := avatar.New(
//	    avatar.WithFetcher(f),
//	    avatar.WithSize(avatar.SizeLarge),
//	    avatar.WithInvalidate(window.Redraw),
//	)
//	defer a.Close()
//	a.SetURL("https://example.com/me.png")
//
//	for {
//	    select {
//	    case <-a.Wake():
//	    case <-ticker.C:
//	    }
//	    a.Update()
//	    _ = a.Render(dc) // dc is a *gg.Context
//	}
//
// # Threading
//
// An Avatar is driven from one goroutine. Fetch results are posted from
// fetch goroutines into the avatar's inbox and applied by Update, so no
// avatar state is touched concurrently. The Fetcher and its disk cache are
// shared by all avatars and are safe for concurrent use.
//
// # Sources
//
// Inline bytes are classified by magic number: PNG and GIF signatures are
// recognized, anything else is decoded by the registered decoders (JPEG,
// BMP, TIFF, WebP). Strings starting with http:// or https:// are fetched;
// other strings are local paths. A .gif suffix selects animated playback.
//
// # Failures
//
// Unresolvable sources, fetch errors, decode errors and inaccessible local
// files all end the attempt the same way: State is StateFailed and the
// display buffer is the placeholder. Nothing is retried automatically;
// call Refresh or set a new source.
package avatar
