package input

import (
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/effect"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// Wanderer drives a pointer on its own for hosts without a mouse: it picks a
// target inside the padded viewport, eases toward it and holds there until
// the next interval elapses.
type Wanderer struct {
	cfg           config.InputConfig
	rng           effect.Rand
	width, height float64

	from, target, pos vmath.Vec2
	moved             time.Time
	duration          time.Duration
}

func NewWanderer(cfg config.InputConfig, width, height float64, rng effect.Rand) *Wanderer {
	if rng == nil {
		rng = effect.NewEntropyRand()
	}
	center := vmath.V(width/2, height/2)
	return &Wanderer{cfg: cfg, rng: rng, width: width, height: height, from: center, target: center, pos: center}
}

func (w *Wanderer) Resize(width, height float64) {
	w.width, w.height = width, height
}

// Update advances the wanderer to now and returns the pointer position.
func (w *Wanderer) Update(now time.Time) vmath.Vec2 {
	if w.moved.IsZero() {
		w.moved = now
	}
	if now.Sub(w.moved) > w.cfg.WanderInterval.Lerp(w.rng.Float64()) {
		w.from = w.pos
		w.target = w.pickTarget()
		w.duration = w.cfg.WanderDuration.Lerp(w.rng.Float64())
		w.moved = now
	}

	since := now.Sub(w.moved)
	if w.duration <= 0 || since >= w.duration {
		w.pos = w.target
		return w.pos
	}
	w.pos = w.from.Lerp(w.target, vmath.EaseInOutQuad(float64(since)/float64(w.duration)))
	return w.pos
}

func (w *Wanderer) Target() vmath.Vec2 { return w.target }

func (w *Wanderer) pickTarget() vmath.Vec2 {
	return vmath.V(w.axis(w.width), w.axis(w.height))
}

func (w *Wanderer) axis(extent float64) float64 {
	pad := w.cfg.WanderPadding
	if extent <= 2*pad {
		return extent / 2
	}
	return pad + w.rng.Float64()*(extent-2*pad)
}

// WanderEnabled decides whether the autonomous pointer runs: always for
// "on", never for "off", and for "auto" on narrow viewports or when the host
// has no mouse.
func WanderEnabled(cfg config.InputConfig, viewportWidth int, hasMouse bool) bool {
	switch cfg.Wander {
	case "on":
		return true
	case "off":
		return false
	default:
		return viewportWidth <= cfg.SmallViewport || !hasMouse
	}
}
