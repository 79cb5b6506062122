// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	assert.Equal(t, FormatPNG, Sniff(pngBytes(t, 4, 4, red)))
	assert.Equal(t, FormatPNG, Sniff([]byte{0x89, 'P', 'N', 'G'}))
	assert.Equal(t, FormatAnimated, Sniff(gifBytes(t, 10, red, green)))
	assert.Equal(t, FormatRaster, Sniff(jpegBytes(t, 4, 4, red)))
	assert.Equal(t, FormatRaster, Sniff([]byte("not an image")))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		src    Source
		kind   SourceKind
		format Format
	}{
		{"empty string", NewURLSource(""), SourceNone, FormatRaster},
		{"blank string", NewURLSource("   "), SourceNone, FormatRaster},
		{"empty bytes", BytesSource(nil), SourceNone, FormatRaster},
		{"zero source", Source{}, SourceNone, FormatRaster},
		{"http", NewURLSource("http://example.com/a.png"), SourceURL, FormatRaster},
		{"https upper", NewURLSource("HTTPS://example.com/a.png"), SourceURL, FormatRaster},
		{"url gif", NewURLSource("https://example.com/a.gif"), SourceURL, FormatAnimated},
		{"url gif query", NewURLSource("https://example.com/a.GIF?v=2#x"), SourceURL, FormatAnimated},
		{"url gif only in query", NewURLSource("https://example.com/a.png?f=.gif"), SourceURL, FormatRaster},
		{"path", NewURLSource("/tmp/a.png"), SourcePath, FormatRaster},
		{"relative gif path", NewURLSource("img/spin.gif"), SourcePath, FormatAnimated},
		{"explicit url kind with path", Source{Kind: SourceURL, URL: "./a.png"}, SourcePath, FormatRaster},
		{"http-like path", NewURLSource("httpdocs/a.png"), SourcePath, FormatRaster},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.src)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.format, got.Format)
		})
	}
}

func TestResolveBytes(t *testing.T) {
	got := Resolve(BytesSource(gifBytes(t, 10, red)))
	assert.Equal(t, SourceBytes, got.Kind)
	assert.True(t, got.Format.Animated())

	got = Resolve(ImageSource(solid(2, 2, red)))
	assert.Equal(t, SourceBytes, got.Kind)
	assert.Equal(t, FormatRaster, got.Format)
}

func TestResolveTrimsURL(t *testing.T) {
	got := NewURLSource("  https://example.com/a.png \n")
	assert.Equal(t, "https://example.com/a.png", got.URL)
}
