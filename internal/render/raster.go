package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/fogleman/gg"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// Raster is an in-memory Surface backed by gg.
type Raster struct {
	img *image.RGBA
	dc  *gg.Context
}

// NewRaster allocates a width×height transparent raster.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d raster", ErrNoSurface, width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &Raster{img: img, dc: gg.NewContextForRGBA(img)}, nil
}

func (r *Raster) Size() (float64, float64) {
	b := r.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (r *Raster) Image() *image.RGBA { return r.img }

// Context exposes the gg context for compositing steps.
func (r *Raster) Context() *gg.Context { return r.dc }

// Reset replaces every pixel with c, ignoring blending.
func (r *Raster) Reset(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Raster) Fill(c color.NRGBA) {
	w, h := r.Size()
	r.Rect(0, 0, w, h, c)
}

func (r *Raster) Rect(x, y, w, h float64, c color.NRGBA) {
	r.dc.SetColor(c)
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()
}

func (r *Raster) RadialGradient(center vmath.Vec2, radius float64, stops []Stop) {
	if radius <= 0 || len(stops) == 0 {
		return
	}
	g := gg.NewRadialGradient(center.X, center.Y, 0, center.X, center.Y, radius)
	for _, s := range stops {
		g.AddColorStop(s.Offset, s.Color)
	}
	r.dc.SetFillStyle(g)
	r.dc.DrawCircle(center.X, center.Y, radius)
	r.dc.Fill()
}

func (r *Raster) StrokeCircle(center vmath.Vec2, radius, width float64, c color.NRGBA) {
	if radius <= 0 {
		return
	}
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.DrawCircle(center.X, center.Y, radius)
	r.dc.Stroke()
}

func (r *Raster) StrokePolyline(points []vmath.Vec2, closed bool, width float64, c color.NRGBA) {
	if len(points) < 2 {
		return
	}
	r.trace(points, closed)
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.Stroke()
}

func (r *Raster) FillPolygons(rings [][]vmath.Vec2, c color.NRGBA) {
	for _, ring := range rings {
		if len(ring) >= 3 {
			r.trace(ring, true)
		}
	}
	r.dc.SetFillRule(gg.FillRuleEvenOdd)
	r.dc.SetColor(c)
	r.dc.Fill()
}

func (r *Raster) trace(points []vmath.Vec2, closed bool) {
	r.dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	if closed {
		r.dc.ClosePath()
	}
}

// EncodePNG writes the raster as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}
