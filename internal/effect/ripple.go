package effect

import (
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// RippleSource records which input created a ripple; each source has its
// own concurrency cap.
type RippleSource int

const (
	FromMove RippleSource = iota
	FromTap
)

func (r RippleSource) String() string {
	if r == FromTap {
		return "tap"
	}
	return "move"
}

// Ripple is an expanding ring set. Radius and Intensity are derived from
// age on every step.
type Ripple struct {
	Origin    vmath.Vec2
	Start     time.Time
	Radius    float64
	Intensity float64
	Source    RippleSource
}

func (r Ripple) valid() bool {
	return r.Origin.Finite() && vmath.IsFinite(r.Radius) && vmath.IsFinite(r.Intensity)
}

// AddRipple starts a ripple at origin. When the source's cap is exceeded the
// oldest ripple of the same source is dropped.
func (s *Simulator) AddRipple(origin vmath.Vec2, now time.Time, src RippleSource) {
	if !origin.Finite() {
		return
	}
	s.ripples = append(s.ripples, Ripple{Origin: origin, Start: now, Intensity: 1, Source: src})

	limit := s.cfg.Ripple.MoveCap
	if src == FromTap {
		limit = s.cfg.Ripple.TapCap
	}
	excess := -limit
	for _, r := range s.ripples {
		if r.Source == src {
			excess++
		}
	}
	if excess <= 0 {
		return
	}
	kept := s.ripples[:0]
	for _, r := range s.ripples {
		if r.Source == src && excess > 0 {
			excess--
			continue
		}
		kept = append(kept, r)
	}
	clear(s.ripples[len(kept):])
	s.ripples = kept
}

func (s *Simulator) advanceRipples(now time.Time) {
	dur := s.cfg.Ripple.Duration
	kept := s.ripples[:0]
	for _, r := range s.ripples {
		age := now.Sub(r.Start)
		if age > dur {
			continue
		}
		progress := float64(age) / float64(dur)
		if progress < 0 {
			progress = 0
		}
		r.Radius = progress * s.cfg.Ripple.MaxRadius
		r.Intensity = vmath.Clamp01(1 - progress*s.cfg.Ripple.FadeRate)
		if !r.valid() {
			continue
		}
		kept = append(kept, r)
	}
	clear(s.ripples[len(kept):])
	s.ripples = kept
}
