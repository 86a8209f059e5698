// Package compositor overlays the countdown text on background frames. It
// produces the animated banner sequence and the static banner images.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/alertkit/internal/fonts"
)

// Surface is the minimal drawing target for filled shapes.
type Surface interface {
	SetRGBA255(r, g, b, a int)
	DrawRectangle(x, y, w, h float64)
	Fill()
}

// RoundedSurface is a Surface that can round rectangle corners.
type RoundedSurface interface {
	Surface
	DrawRoundedRectangle(x, y, w, h, r float64)
}

// FillBox fills r with c. Corners are rounded with radius when the surface
// supports it and radius is positive, otherwise a plain rectangle is drawn.
func FillBox(s Surface, r image.Rectangle, radius int, c color.NRGBA) {
	s.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
	x, y := float64(r.Min.X), float64(r.Min.Y)
	w, h := float64(r.Dx()), float64(r.Dy())
	if rs, ok := s.(RoundedSurface); ok && radius > 0 {
		rs.DrawRoundedRectangle(x, y, w, h, float64(radius))
	} else {
		s.DrawRectangle(x, y, w, h)
	}
	s.Fill()
}

// drawText draws text so that the top-left of its ink box lands on (x, y).
func drawText(dc *gg.Context, face font.Face, box fonts.Box, text string, x, y int, c color.NRGBA) {
	dot := box.Origin(x, y)
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawString(text, fixedToFloat(dot.X), fixedToFloat(dot.Y))
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// face opens a face of the family at size together with its ink box for text.
func face(f *fonts.Family, size int, text string) (font.Face, fonts.Box, error) {
	fc, err := f.Face(size)
	if err != nil {
		return nil, fonts.Box{}, fmt.Errorf("font size %d: %w", size, err)
	}
	return fc, fonts.Bounds(fc, text), nil
}

// resize scales img to exactly w x h with a Lanczos filter into a new RGBA.
func resize(img image.Image, w, h int) *image.RGBA {
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	return dst
}

// composite blends a transparent overlay onto dst.
func composite(dst *image.RGBA, overlay *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), overlay, image.Point{}, draw.Over)
}

// flatten discards alpha by compositing img over opaque black.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// overlay hands out a cleared transparent buffer, from the pool when one is set.
func (r *Renderer) overlay(w, h int) *image.RGBA {
	rect := image.Rect(0, 0, w, h)
	if r.Pool != nil {
		return r.Pool.Get(rect)
	}
	return image.NewRGBA(rect)
}

func (r *Renderer) release(img *image.RGBA) {
	if r.Pool != nil {
		r.Pool.Put(img)
	}
}

// floorDiv divides rounding toward negative infinity so centering stays stable
// when text is wider than the canvas.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
