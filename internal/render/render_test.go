package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/effect"
	"github.com/iburimskiy/cursor-smudge/internal/svgdoc"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op     string
	radius float64
	stops  int
	color  color.NRGBA
}

// fakeSurface records every drawing call in order.
type fakeSurface struct {
	calls []call
}

func (f *fakeSurface) Size() (float64, float64) { return 800, 600 }
func (f *fakeSurface) Fill(c color.NRGBA)       { f.calls = append(f.calls, call{op: "fill", color: c}) }
func (f *fakeSurface) Rect(_, _, w, _ float64, c color.NRGBA) {
	f.calls = append(f.calls, call{op: "rect", radius: w, color: c})
}
func (f *fakeSurface) RadialGradient(_ vmath.Vec2, r float64, stops []Stop) {
	f.calls = append(f.calls, call{op: "gradient", radius: r, stops: len(stops)})
}
func (f *fakeSurface) StrokeCircle(_ vmath.Vec2, r, _ float64, c color.NRGBA) {
	f.calls = append(f.calls, call{op: "circle", radius: r, color: c})
}
func (f *fakeSurface) StrokePolyline(_ []vmath.Vec2, _ bool, _ float64, c color.NRGBA) {
	f.calls = append(f.calls, call{op: "polyline", color: c})
}
func (f *fakeSurface) FillPolygons(rings [][]vmath.Vec2, c color.NRGBA) {
	f.calls = append(f.calls, call{op: "polygons", stops: len(rings), color: c})
}

func (f *fakeSurface) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

type fakeScene struct {
	trails    []effect.TrailPoint
	particles []effect.Particle
	ripples   []effect.Ripple
	blur      []effect.BlurRegion
}

func (s *fakeScene) Trails() []effect.TrailPoint      { return s.trails }
func (s *fakeScene) Particles() []effect.Particle     { return s.particles }
func (s *fakeScene) Ripples() []effect.Ripple         { return s.ripples }
func (s *fakeScene) BlurRegions() []effect.BlurRegion { return s.blur }

type fixedPointer struct {
	pos   vmath.Vec2
	known bool
}

func (p fixedPointer) Pointer() (vmath.Vec2, bool) { return p.pos, p.known }

func effectsConfig() config.EffectsConfig { return config.NewDefaultConfig().Effects }

func TestRenderOrderAndCounts(t *testing.T) {
	special := effect.NewStraight(vmath.V(10, 10), vmath.Vec2{}, 3, time.Second)
	special.Class = effect.Special
	scene := &fakeScene{
		trails: []effect.TrailPoint{{Pos: vmath.V(100, 100), Intensity: 0.5}},
		particles: []effect.Particle{
			effect.NewStraight(vmath.V(50, 50), vmath.Vec2{}, 1, time.Second),
			effect.NewStraight(vmath.V(60, 60), vmath.Vec2{}, 12, time.Second),
			special,
		},
		ripples: []effect.Ripple{{Origin: vmath.V(300, 300), Radius: 120, Intensity: 1}},
	}
	s := &fakeSurface{}
	NewRenderer(effectsConfig(), scene, fixedPointer{vmath.V(400, 300), true}).Render(s, 1)

	require.NotEmpty(t, s.calls)
	assert.Equal(t, call{op: "fill", color: color.NRGBA{R: 255, G: 255, B: 255, A: 5}}, s.calls[0])

	// trail, big particle disc + glow, cursor glow
	assert.Equal(t, 4, s.count("gradient"))
	assert.Equal(t, 60.0, s.calls[1].radius, "trail radius is 120 times intensity")
	// 1px block + halo, special square
	assert.Equal(t, 3, s.count("rect"))
	// radius 120 leaves rings 120, 70, 20: stroke and glow each, plus three cursor rings
	assert.Equal(t, 9, s.count("circle"))
	last := s.calls[len(s.calls)-4]
	assert.Equal(t, "gradient", last.op)
	assert.Equal(t, 6, last.stops)
	assert.Equal(t, 150.0, last.radius)
}

func TestRenderSpecialIsBlack(t *testing.T) {
	p := effect.NewStraight(vmath.V(10, 10), vmath.Vec2{}, 3, time.Second)
	p.Class = effect.Special
	s := &fakeSurface{}
	NewRenderer(effectsConfig(), &fakeScene{particles: []effect.Particle{p}}, nil).Render(s, 0)
	require.Len(t, s.calls, 2)
	assert.Equal(t, call{op: "rect", radius: 3, color: color.NRGBA{A: 255}}, s.calls[1])
}

func TestRenderHidesCursorOffscreen(t *testing.T) {
	for _, ptr := range []fixedPointer{{}, {vmath.V(0, 50), true}, {vmath.V(50, -1), true}} {
		s := &fakeSurface{}
		NewRenderer(effectsConfig(), &fakeScene{}, ptr).Render(s, 0)
		assert.Len(t, s.calls, 1, "only the persistence fill for %+v", ptr)
	}
}

func TestRenderNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRenderer(effectsConfig(), &fakeScene{}, nil).Render(nil, 0)
		var r *Renderer
		r.Render(&fakeSurface{}, 0)
		NewRenderer(effectsConfig(), nil, nil).Render(&fakeSurface{}, 0)
	})
}

func TestZoom(t *testing.T) {
	cfg := config.NewDefaultConfig().Effects.Lens
	assert.Equal(t, 1.0, Zoom(cfg, 0))
	assert.InDelta(t, 1.3, Zoom(cfg, math.Pi/3), 1e-12)
	assert.InDelta(t, 0.7, Zoom(cfg, math.Pi), 1e-12)
}

func TestLensRings(t *testing.T) {
	cfg := config.NewDefaultConfig().Effects.Lens
	rings := LensRings(cfg, vmath.V(5, 5), 1, 0)
	require.Len(t, rings, 4)
	for i, r := range rings {
		fi := float64(i)
		assert.Equal(t, 150+40*fi, r.Radius)
		assert.InDelta(t, 1+0.1*fi, r.Scale, 1e-12)
		assert.InDelta(t, 0.3-0.08*fi, r.Opacity, 1e-12)
	}
	assert.InDelta(t, 60, rings[0].Hue, 1e-12)

	dim := LensRings(cfg, vmath.Vec2{}, 1.3, 0)
	assert.InDelta(t, 0.3*0.85, dim[0].Opacity, 1e-12)
}

func TestTransform(t *testing.T) {
	cfg := config.NewDefaultConfig().Effects.Lens
	center := vmath.V(0, 0)

	t.Run("identity far from pointer and ripples", func(t *testing.T) {
		tr := Transform(cfg, 3, center, vmath.V(1000, 1000), true, 1.3, []effect.Ripple{
			{Origin: vmath.V(300, 0), Radius: 100, Intensity: 1},
			{Origin: vmath.V(10, 0), Radius: 100, Intensity: 1},
		})
		assert.True(t, tr.IsIdentity())
		assert.Equal(t, 3, tr.Handle)
	})

	t.Run("lens term", func(t *testing.T) {
		tr := Transform(cfg, 0, center, center, true, 1.3, nil)
		assert.InDelta(t, 1.24, tr.Scale, 1e-12)
		assert.True(t, Transform(cfg, 0, center, center, false, 1.3, nil).IsIdentity())

		half := Transform(cfg, 0, center, vmath.V(125, 0), true, 1.3, nil)
		assert.InDelta(t, 1.12, half.Scale, 1e-12)
	})

	t.Run("ripple term", func(t *testing.T) {
		rp := []effect.Ripple{{Origin: vmath.V(100, 0), Radius: 90, Intensity: 1}}
		tr := Transform(cfg, 0, center, vmath.Vec2{}, false, 1, rp)
		assert.InDelta(t, 40, tr.Translate.X, 1e-9)
		assert.InDelta(t, 0, tr.Translate.Y, 1e-9)
		assert.InDelta(t, 1.15, tr.Scale, 1e-9)
	})

	t.Run("lens and ripple scales multiply", func(t *testing.T) {
		rp := []effect.Ripple{{Origin: vmath.V(100, 0), Radius: 90, Intensity: 1}}
		tr := Transform(cfg, 0, center, center, true, 1.3, rp)
		assert.InDelta(t, 1.24*1.15, tr.Scale, 1e-9)
	})
}

func TestContainerTransformApply(t *testing.T) {
	tr := ContainerTransform{Translate: vmath.V(5, -5), Scale: 2}
	assert.Equal(t, vmath.V(35, 5), tr.Apply(vmath.V(20, 10), vmath.V(10, 10)))
	assert.Equal(t, vmath.V(7, 9), Identity(0).Apply(vmath.V(7, 9), vmath.V(1, 1)))
}

func TestOverlayApply(t *testing.T) {
	cfg := config.NewDefaultConfig().Effects.Lens
	scene := &fakeScene{
		ripples: []effect.Ripple{{Origin: vmath.V(500, 500), Radius: 10, Intensity: 1}},
		blur:    []effect.BlurRegion{{Pos: vmath.V(1, 2), Size: 300, Blur: 4}},
	}
	o := NewOverlay(cfg, scene, fixedPointer{vmath.V(100, 100), true})
	o.SetContainers([]vmath.Vec2{{X: 100, Y: 100}, {X: 900, Y: 900}})

	port := &OverlayState{}
	o.Apply(port, math.Pi/3)

	assert.True(t, port.Lens.Visible)
	assert.InDelta(t, 1.3, port.Lens.Zoom, 1e-12)
	assert.InDelta(t, 260, port.Lens.ClipRadius, 1e-9)
	assert.Len(t, port.Rings, 4)
	require.Len(t, port.Blur, 1)
	assert.Equal(t, BlurPatch{Center: vmath.V(1, 2), Size: 300, Blur: 4, Opacity: 0.6}, port.Blur[0])
	assert.True(t, port.Prism.Visible)
	require.Len(t, port.Transforms, 2)
	assert.InDelta(t, 1.24, port.Transforms[0].Scale, 1e-12)
	assert.True(t, port.Transforms[1].IsIdentity())

	o.Clear(port)
	assert.False(t, port.Lens.Visible)
	assert.Empty(t, port.Rings)
	for _, tr := range port.Transforms {
		assert.True(t, tr.IsIdentity())
	}
}

func TestOverlayHiddenPointer(t *testing.T) {
	o := NewOverlay(config.NewDefaultConfig().Effects.Lens, &fakeScene{}, fixedPointer{})
	o.SetContainers([]vmath.Vec2{{X: 10, Y: 10}})
	port := &OverlayState{Rings: []LensRing{{}}}
	o.Apply(port, 1)
	assert.False(t, port.Lens.Visible)
	assert.Empty(t, port.Rings)
	assert.True(t, port.Transforms[0].IsIdentity())

	assert.NotPanics(t, func() { o.Apply(nil, 0) })
}

func TestNewRasterRejectsEmpty(t *testing.T) {
	_, err := NewRaster(0, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSurface))
}

func TestRasterPersistenceLightens(t *testing.T) {
	r, err := NewRaster(4, 4)
	require.NoError(t, err)
	r.Reset(color.Black)
	NewRenderer(effectsConfig(), &fakeScene{}, nil).Render(r, 0)

	px := r.Image().RGBAAt(2, 2)
	assert.Greater(t, px.R, uint8(0))
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, uint8(255), px.A)
}

func TestRasterDrawsScene(t *testing.T) {
	r, err := NewRaster(320, 240)
	require.NoError(t, err)
	r.Reset(color.White)

	sim := effect.New(effectsConfig(), 320, 240, effect.NewRand(1))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sim.AddTrail(vmath.V(160, 120), vmath.Vec2{}, now)
	sim.AddRipple(vmath.V(100, 100), now.Add(-time.Second), effect.FromTap)
	sim.AddParticle(effect.NewStraight(vmath.V(20, 20), vmath.Vec2{}, 10, time.Second))
	sim.Step(now)

	NewRenderer(effectsConfig(), sim, fixedPointer{vmath.V(160, 120), true}).Render(r, 0.5)

	assert.NotEqual(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, r.Image().RGBAAt(160, 120), "trail should tint the centre")

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
}

func TestMultiply(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	dst.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	dst.SetRGBA(1, 0, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	src.SetRGBA(0, 0, color.RGBA{R: 128, A: 128})
	src.SetRGBA(1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	Multiply(dst, src)
	assert.Equal(t, color.RGBA{R: 255, G: 127, B: 127, A: 255}, dst.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 100, G: 100, B: 100, A: 255}, dst.RGBAAt(1, 0))
}

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <path d="M10 10 L90 10 L90 90 Z"/>
  <path d="M10 50 L50 50"/>
</svg>`

func loadSquare(t *testing.T) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Load(strings.NewReader(squareSVG))
	require.NoError(t, err)
	return doc
}

func TestPageLayout(t *testing.T) {
	doc := loadSquare(t)
	p := NewPage(config.NewDefaultConfig().Wave, []*svgdoc.Document{doc}, 1000, 500)
	require.Len(t, p.Cells(), 1)

	c := p.Cells()[0]
	assert.InDelta(t, 120, c.Box.X, 1e-9)
	assert.InDelta(t, 60, c.Box.Y, 1e-9)
	assert.InDelta(t, 760, c.Box.W, 1e-9)
	assert.InDelta(t, 380, c.Box.H, 1e-9)
	assert.Equal(t, []vmath.Vec2{{X: 500, Y: 250}}, p.Centers())

	origin := c.toScreen(vmath.V(0, 0))
	assert.InDelta(t, 310, origin.X, 1e-9)
	assert.InDelta(t, 60, origin.Y, 1e-9)

	grid := NewPage(config.NewDefaultConfig().Wave, []*svgdoc.Document{doc, doc, doc, doc, doc, nil}, 900, 600)
	require.Len(t, grid.Cells(), 5)
	assert.InDelta(t, 300*0.76, grid.Cells()[4].Box.W, 1e-9)
	assert.InDelta(t, 300+300*0.12, grid.Cells()[4].Box.X, 1e-9)
}

func TestPageDraw(t *testing.T) {
	p := NewPage(config.NewDefaultConfig().Wave, []*svgdoc.Document{loadSquare(t)}, 400, 400)
	s := &fakeSurface{}
	p.Draw(s, 1.5, 0, nil)
	assert.Equal(t, 1, s.count("polygons"))
	assert.Equal(t, 1, s.count("polyline"))

	assert.NotPanics(t, func() { p.Draw(nil, 0, 0, nil) })
}

func TestCompose(t *testing.T) {
	page, err := NewRaster(200, 200)
	require.NoError(t, err)
	page.Reset(Paper)
	canvas, err := NewRaster(200, 200)
	require.NoError(t, err)
	canvas.Rect(0, 0, 100, 200, color.NRGBA{R: 255, A: 255})

	ov := &OverlayState{
		Lens:  Lens{Visible: true, Center: vmath.V(100, 100), Zoom: 1.2, ClipRadius: 40},
		Rings: LensRings(config.NewDefaultConfig().Effects.Lens, vmath.V(100, 100), 1.2, 0),
		Blur:  []BlurPatch{{Center: vmath.V(150, 150), Size: 60, Blur: 4, Opacity: 0.6}},
		Prism: Prism{Visible: true, Center: vmath.V(100, 100), Radius: 300},
	}
	img, err := Compose(page, canvas, ov)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())

	left := img.RGBAAt(10, 190)
	assert.Zero(t, left.G, "red canvas multiplies away green")
	right := img.RGBAAt(190, 10)
	assert.Greater(t, right.G, uint8(200))
}
