// Package render paints simulator state onto a raster Surface and computes
// the non-raster overlay outputs (lens, rings, blur patches, container
// transforms) for an OverlayPort.
package render

import (
	"errors"
	"image/color"

	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// ErrNoSurface is returned when a drawing surface cannot be created.
var ErrNoSurface = errors.New("render: surface unavailable")

// Stop is one colour stop of a radial gradient, Offset in [0,1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Surface is the drawing port. Implementations blend with source-over.
type Surface interface {
	Size() (w, h float64)
	// Fill covers the whole surface with c.
	Fill(c color.NRGBA)
	// Rect fills an axis-aligned rectangle.
	Rect(x, y, w, h float64, c color.NRGBA)
	// RadialGradient fills a disc whose colour runs through stops from the
	// centre outward.
	RadialGradient(center vmath.Vec2, radius float64, stops []Stop)
	StrokeCircle(center vmath.Vec2, radius, width float64, c color.NRGBA)
	// StrokePolyline strokes connected points, closing the loop if closed.
	StrokePolyline(points []vmath.Vec2, closed bool, width float64, c color.NRGBA)
	// FillPolygons fills the union of rings with the even-odd rule.
	FillPolygons(rings [][]vmath.Vec2, c color.NRGBA)
}
