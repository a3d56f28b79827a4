package window

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/iburimskiy/cursor-smudge/internal/render"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// gradientSegments is the number of slices in a radial gradient fan.
const gradientSegments = 48

var (
	whiteImage = ebiten.NewImage(3, 3)

	// whiteSubImage is the 1×1 texel every vertex samples from, so vertex
	// colours pass through unchanged.
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// surface adapts an *ebiten.Image to render.Surface.
type surface struct {
	img *ebiten.Image
	vs  []ebiten.Vertex
	is  []uint16
}

func newSurface(img *ebiten.Image) *surface {
	return &surface{img: img}
}

func (s *surface) Size() (float64, float64) {
	b := s.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (s *surface) Fill(c color.NRGBA) {
	w, h := s.Size()
	s.Rect(0, 0, w, h, c)
}

func (s *surface) Rect(x, y, w, h float64, c color.NRGBA) {
	vector.DrawFilledRect(s.img, float32(x), float32(y), float32(w), float32(h), c, false)
}

// RadialGradient draws a triangle fan with one ring of vertices per stop;
// the GPU interpolates colours between rings.
func (s *surface) RadialGradient(center vmath.Vec2, radius float64, stops []render.Stop) {
	if radius <= 0 || len(stops) == 0 {
		return
	}
	s.vs, s.is = s.vs[:0], s.is[:0]
	s.vs = append(s.vs, vertex(center, stops[0].Color))

	for ring, st := range stops {
		r := radius * st.Offset
		for i := range gradientSegments {
			a := 2 * math.Pi * float64(i) / gradientSegments
			s.vs = append(s.vs, vertex(vmath.Polar(center, r, a), st.Color))
		}
		base := uint16(1 + ring*gradientSegments)
		for i := range uint16(gradientSegments) {
			j := (i + 1) % gradientSegments
			if ring == 0 {
				s.is = append(s.is, 0, base+i, base+j)
				continue
			}
			prev := base - gradientSegments
			s.is = append(s.is, prev+i, base+i, base+j, prev+i, base+j, prev+j)
		}
	}
	s.img.DrawTriangles(s.vs, s.is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func (s *surface) StrokeCircle(center vmath.Vec2, radius, width float64, c color.NRGBA) {
	if radius <= 0 {
		return
	}
	vector.StrokeCircle(s.img, float32(center.X), float32(center.Y), float32(radius), float32(width), c, true)
}

func (s *surface) StrokePolyline(points []vmath.Vec2, closed bool, width float64, c color.NRGBA) {
	if len(points) < 2 {
		return
	}
	var path vector.Path
	trace(&path, points, closed)
	s.vs, s.is = path.AppendVerticesAndIndicesForStroke(s.vs[:0], s.is[:0], &vector.StrokeOptions{
		Width:    float32(width),
		LineJoin: vector.LineJoinRound,
		LineCap:  vector.LineCapRound,
	})
	s.draw(c, ebiten.FillRuleFillAll)
}

func (s *surface) FillPolygons(rings [][]vmath.Vec2, c color.NRGBA) {
	var path vector.Path
	for _, ring := range rings {
		if len(ring) >= 3 {
			trace(&path, ring, true)
		}
	}
	s.vs, s.is = path.AppendVerticesAndIndicesForFilling(s.vs[:0], s.is[:0])
	s.draw(c, ebiten.FillRuleEvenOdd)
}

func (s *surface) draw(c color.NRGBA, rule ebiten.FillRule) {
	if len(s.is) == 0 {
		return
	}
	r, g, b, a := channels(c)
	for i := range s.vs {
		s.vs[i].SrcX, s.vs[i].SrcY = 1, 1
		s.vs[i].ColorR, s.vs[i].ColorG, s.vs[i].ColorB, s.vs[i].ColorA = r, g, b, a
	}
	s.img.DrawTriangles(s.vs, s.is, whiteSubImage, &ebiten.DrawTrianglesOptions{
		FillRule:  rule,
		AntiAlias: true,
	})
}

func trace(path *vector.Path, points []vmath.Vec2, closed bool) {
	path.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}
	if closed {
		path.Close()
	}
}

func vertex(p vmath.Vec2, c color.NRGBA) ebiten.Vertex {
	r, g, b, a := channels(c)
	return ebiten.Vertex{
		DstX: float32(p.X), DstY: float32(p.Y),
		SrcX: 1, SrcY: 1,
		ColorR: r, ColorG: g, ColorB: b, ColorA: a,
	}
}

// channels returns straight-alpha vertex colour components.
func channels(c color.NRGBA) (float32, float32, float32, float32) {
	return float32(c.R) / 0xff, float32(c.G) / 0xff, float32(c.B) / 0xff, float32(c.A) / 0xff
}
