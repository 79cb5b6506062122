// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// cornerRadius is the corner radius of the RoundedRect shape.
const cornerRadius = 4

// pulseColor is the color of the loading pulse; its alpha fades as the
// radius grows.
var pulseColor = gg.RGB(45.0/255, 140.0/255, 240.0/255)

// Canvas is the drawing surface an avatar paints into, at its origin.
// *gg.Context implements it.
type Canvas interface {
	Push()
	Pop()
	RotateAbout(angle, x, y float64)
	DrawCircle(x, y, r float64)
	DrawRoundedRectangle(x, y, w, h, r float64)
	ClipPreserve()
	CreateImagePattern(img *gg.ImageBuf, x, y, w, h int) gg.Pattern
	SetFillPattern(p gg.Pattern)
	SetRGBA(r, g, b, a float64)
	Fill() error
}

var _ Canvas = (*gg.Context)(nil)

// Frame is a snapshot of everything the renderer reads.
type Frame struct {
	Shape    Shape
	Size     Size
	Image    *image.RGBA // display buffer, may be nil
	Angle    float64     // degrees, applied only while Rotating
	Rotating bool
	Loading  bool
	Pulse    int
}

// Frame returns the current render snapshot.
func (a *Avatar) Frame() Frame {
	now := a.clock.Now()
	return Frame{
		Shape:    a.cfg.Shape,
		Size:     a.cfg.Size,
		Image:    a.display,
		Angle:    a.rot.value(now),
		Rotating: a.rotationAllowed() && a.rot.running(now),
		Loading:  a.state == StateRequesting,
		Pulse:    a.pulse.radius,
	}
}

// Render paints the avatar into c.
func (a *Avatar) Render(c Canvas) error {
	return Render(c, a.Frame())
}

// Image renders the avatar into a new image of the configured size.
func (a *Avatar) Image() (image.Image, error) {
	dc := gg.NewContext(a.cfg.Size.Width, a.cfg.Size.Height)
	defer func() { _ = dc.Close() }()
	if err := a.Render(dc); err != nil {
		return nil, err
	}
	return cloneImage(dc.Image()), nil
}

// Render paints f into c: the display buffer clipped to the shape,
// turned clockwise about the centre while a sweep runs, and the loading
// pulse on top while a fetch is outstanding. It never changes avatar
// state.
func Render(c Canvas, f Frame) error {
	w, h := float64(f.Size.Width), float64(f.Size.Height)
	d := math.Min(w, h)
	cx, cy := w/2, h/2

	c.Push()
	defer c.Pop()

	var inv gg.Matrix
	if f.Rotating {
		rad := f.Angle * math.Pi / 180
		c.RotateAbout(rad, cx, cy)
		inv = rotationAbout(rad, cx, cy).Invert()
	}

	shapePath(c, f.Shape, cx, cy, d)
	c.ClipPreserve()

	if f.Image != nil {
		buf := gg.ImageBufFromImage(f.Image)
		p := c.CreateImagePattern(buf, 0, 0, f.Image.Rect.Dx(), f.Image.Rect.Dy())
		if f.Rotating {
			p = &transformedPattern{Pattern: p, inv: inv}
		}
		c.SetFillPattern(p)
		if err := c.Fill(); err != nil {
			return err
		}
	}

	if f.Loading && f.Pulse > 0 {
		r := float64(f.Pulse)
		c.SetRGBA(pulseColor.R, pulseColor.G, pulseColor.B, 1-r/10)
		c.DrawCircle(cx, cy, r)
		if err := c.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// shapePath adds the clip outline, a centred square of side d.
func shapePath(c Canvas, s Shape, cx, cy, d float64) {
	if s == RoundedRect {
		c.DrawRoundedRectangle(cx-d/2, cy-d/2, d, d, cornerRadius)
		return
	}
	c.DrawCircle(cx, cy, d/2)
}

// rotationAbout is the matrix (*gg.Context).RotateAbout applies.
func rotationAbout(rad, x, y float64) gg.Matrix {
	return gg.Translate(x, y).Multiply(gg.Rotate(rad)).Multiply(gg.Translate(-x, -y))
}

// transformedPattern samples a pattern in user space. gg image patterns
// are sampled at device coordinates, so under a canvas transform each
// device point is mapped back through the inverse matrix first.
type transformedPattern struct {
	gg.Pattern
	inv gg.Matrix
}

func (p *transformedPattern) ColorAt(x, y float64) gg.RGBA {
	q := p.inv.TransformPoint(gg.Pt(x, y))
	return p.Pattern.ColorAt(q.X, q.Y)
}

func cloneImage(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}
