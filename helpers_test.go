// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func pngBytes(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h, c)))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h, c), &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

// gifBytes encodes one 16x16 frame per color, each shown for delay
// hundredths of a second.
func gifBytes(t *testing.T, delay int, cols ...color.RGBA) []byte {
	t.Helper()
	pal := make(color.Palette, 0, len(cols))
	for _, c := range cols {
		pal = append(pal, c)
	}
	g := &gif.GIF{}
	for i := range cols {
		f := image.NewPaletted(image.Rect(0, 0, 16, 16), pal)
		for p := range f.Pix {
			f.Pix[p] = uint8(i)
		}
		g.Image = append(g.Image, f)
		g.Delay = append(g.Delay, delay)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func assertColor(t *testing.T, img image.Image, x, y int, want color.RGBA) {
	t.Helper()
	r, g, b, a := img.At(x, y).RGBA()
	got := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	const delta = 3
	assert.InDelta(t, want.R, got.R, delta, "R at (%d,%d): got %v want %v", x, y, got, want)
	assert.InDelta(t, want.G, got.G, delta, "G at (%d,%d): got %v want %v", x, y, got, want)
	assert.InDelta(t, want.B, got.B, delta, "B at (%d,%d): got %v want %v", x, y, got, want)
	assert.InDelta(t, want.A, got.A, delta, "A at (%d,%d): got %v want %v", x, y, got, want)
}

func assertPlaceholder(t *testing.T, a *Avatar, size Size) {
	t.Helper()
	require.NotNil(t, a.Display())
	assert.Equal(t, size.Width, a.Display().Rect.Dx())
	assert.Equal(t, size.Height, a.Display().Rect.Dy())
	assertColor(t, a.Display(), 0, 0, placeholderColor)
	assertColor(t, a.Display(), size.Width-1, size.Height-1, placeholderColor)
}

// awaitResult waits for a fetch result to reach the inbox and applies it.
func awaitResult(t *testing.T, a *Avatar) {
	t.Helper()
	select {
	case <-a.Wake():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for fetch result")
	}
	a.Update()
}

// imageServer serves body with the given Cache-Control and counts hits.
type imageServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newImageServer(t *testing.T, body []byte, cacheControl string) *imageServer {
	t.Helper()
	s := &imageServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if cacheControl != "" {
			w.Header().Set("Cache-Control", cacheControl)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

// gatedServer holds every request until release is called.
type gatedServer struct {
	*httptest.Server
	hits    atomic.Int32
	gate    chan struct{}
	release func()
}

func newGatedServer(t *testing.T, body []byte) *gatedServer {
	t.Helper()
	s := &gatedServer{gate: make(chan struct{})}
	var once sync.Once
	s.release = func() { once.Do(func() { close(s.gate) }) }
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		<-s.gate
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	t.Cleanup(s.release)
	return s
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
