// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"

	// Registered for generic raster decoding.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// placeholderColor fills the display buffer when an acquisition fails.
var placeholderColor = color.RGBA{R: 204, G: 204, B: 204, A: 255}

// Decoded images are bounded before any pixel buffer is allocated:
// maxPixels per still image or animation canvas, maxAnimationPixels over
// all frames of an animation.
const (
	maxPixels          = 4096 * 4096
	maxAnimationPixels = 64 << 20
)

// checkPixels rejects dimensions above limit.
func checkPixels(w, h, limit int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: empty image", ErrDecode)
	}
	if w > limit/h {
		return fmt.Errorf("%w: %w: %dx%d", ErrDecode, ErrTooLarge, w, h)
	}
	return nil
}

// decodeStill decodes a single-frame image. FormatPNG uses the PNG decoder
// only; any other format goes through the registered decoders.
func decodeStill(data []byte, format Format) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrDecode)
	}
	var (
		img image.Image
		cfg image.Config
		err error
	)
	if format == FormatPNG {
		cfg, err = png.DecodeConfig(bytes.NewReader(data))
	} else {
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, err
	}

	if format == FormatPNG {
		img, err = png.Decode(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return img, nil
}

// decodeAnimated decodes every frame of a GIF.
func decodeAnimated(data []byte) (*gif.GIF, error) {
	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, err
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrDecode)
	}
	// Every frame is composited onto a full canvas.
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		w, h = cfg.Width, cfg.Height
	}
	if err := checkPixels(w*h, len(g.Image), maxAnimationPixels); err != nil {
		return nil, err
	}
	return g, nil
}

// scale resizes src to size ignoring aspect ratio.
func scale(src image.Image, size Size) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// placeholder returns a flat gray buffer of the given size.
func placeholder(size Size) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(placeholderColor), image.Point{}, xdraw.Src)
	return dst
}
