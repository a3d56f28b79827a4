package render

import (
	"image/color"
	"math"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/effect"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// Scene is the read side of the simulator.
type Scene interface {
	Trails() []effect.TrailPoint
	Particles() []effect.Particle
	Ripples() []effect.Ripple
}

// PointerSource reports the current pointer. *input.Tracker implements it.
type PointerSource interface {
	Pointer() (vmath.Vec2, bool)
}

// PointerVisible applies the on-screen rule for the cursor glow and lens:
// a pointer must be known and strictly inside the positive quadrant.
func PointerVisible(p PointerSource) (vmath.Vec2, bool) {
	if p == nil {
		return vmath.Vec2{}, false
	}
	pos, ok := p.Pointer()
	return pos, ok && pos.X > 0 && pos.Y > 0
}

var persistence = color.NRGBA{R: 255, G: 255, B: 255, A: 5} // white at 0.02

// Renderer paints the smudge layer: persistence fill, trails, particles,
// ripples and the cursor glow, in that order.
type Renderer struct {
	cfg     config.EffectsConfig
	scene   Scene
	pointer PointerSource
}

func NewRenderer(cfg config.EffectsConfig, scene Scene, pointer PointerSource) *Renderer {
	return &Renderer{cfg: cfg, scene: scene, pointer: pointer}
}

// Render draws one frame at elapsed time t (seconds). A nil surface or a
// renderer without a scene draws nothing.
func (r *Renderer) Render(s Surface, t float64) {
	if r == nil || s == nil || r.scene == nil {
		return
	}
	s.Fill(persistence)
	r.trails(s, t)
	r.particles(s)
	r.ripples(s)
	if pos, ok := PointerVisible(r.pointer); ok {
		r.cursor(s, pos, t)
	}
}

func (r *Renderer) trails(s Surface, t float64) {
	radius := r.cfg.Trail.Radius
	for k, p := range r.scene.Trails() {
		in := p.Intensity
		if in <= 0 {
			continue
		}
		pos := p.RenderPos(t, r.cfg.Trail.Jitter)
		h := 60 + math.Sin(t*0.5+float64(k)*0.3)*80
		s.RadialGradient(pos, radius*in, []Stop{
			{0, vmath.HSLA(h, 0.7, 0.6, 0.4*in)},
			{0.33, vmath.HSLA(h+30, 0.7, 0.6, 0.3*in)},
			{0.66, vmath.HSLA(h+60, 0.7, 0.6, 0.25*in)},
			{1, vmath.HSLA(h, 0.7, 0.6, 0.05*in)},
		})
	}
}

func (r *Renderer) particles(s Surface) {
	for _, p := range r.scene.Particles() {
		size := p.Size
		switch {
		case p.Class == effect.Special:
			s.Rect(math.Floor(p.Pos.X-size/2), math.Floor(p.Pos.Y-size/2), size, size, color.NRGBA{A: 255})
		case size == 1:
			a := p.Fade()
			x, y := math.Floor(p.Pos.X), math.Floor(p.Pos.Y)
			s.Rect(x, y, 1, 1, vmath.HSLA(p.Hue, 0.8, 0.7, a))
			s.Rect(x-1, y-1, 3, 3, vmath.HSLA(p.Hue, 0.8, 0.7, a*0.5))
		default:
			a := p.Fade()
			// glow first so the disc sits on top of it
			s.RadialGradient(p.Pos, size*2.5, []Stop{
				{0, vmath.HSLA(p.Hue, 0.8, 0.7, a*0.5)},
				{1, vmath.HSLA(p.Hue, 0.8, 0.7, 0)},
			})
			s.RadialGradient(p.Pos, size, []Stop{
				{0, vmath.HSLA(p.Hue, 0.8, 0.7, a)},
				{0.5, vmath.HSLA(p.Hue+20, 0.8, 0.65, a*0.7)},
				{1, vmath.HSLA(p.Hue+40, 0.8, 0.6, a*0.3)},
			})
		}
	}
}

const (
	rippleWidth = 3
	rippleGlow  = 15
)

func (r *Renderer) ripples(s Surface) {
	rings := r.cfg.Ripple.Rings
	for _, rp := range r.scene.Ripples() {
		for ring := range rings {
			radius := rp.Radius - float64(ring)*r.cfg.Ripple.RingSpacing
			if radius <= 0 {
				continue
			}
			opacity := (1 - float64(ring)/float64(rings)) * rp.Intensity * 0.9
			h := 60 + float64(ring%2)*60
			s.StrokeCircle(rp.Origin, radius, rippleGlow, vmath.HSLA(h, 0.8, 0.65, opacity*0.7*0.35))
			s.StrokeCircle(rp.Origin, radius, rippleWidth, vmath.HSLA(h, 0.8, 0.65, opacity))
		}
	}
}

var cursorAlphas = [...]float64{0.5, 0.4, 0.35, 0.3, 0.2, 0.1}

func (r *Renderer) cursor(s Surface, pos vmath.Vec2, t float64) {
	center := pos.Add(vmath.V(math.Sin(t*3)*8, math.Cos(t*2.5)*8))
	radius := r.cfg.Lens.GlowRadius
	base := 60 + math.Sin(t*0.4)*80

	stops := make([]Stop, len(cursorAlphas))
	for k, a := range cursorAlphas {
		stops[k] = Stop{Offset: float64(k) * 0.2, Color: vmath.HSLA(base+15*float64(k), 0.8, 0.65, a)}
	}
	s.RadialGradient(center, radius, stops)

	for i := 1; i <= 3; i++ {
		fi := float64(i)
		ring := center.Add(vmath.V(0, math.Sin(t*2+fi)*5))
		s.StrokeCircle(ring, radius+fi*30, 2, vmath.HSLA(base+fi*15, 0.7, 0.6, 0.2/fi))
	}
}
