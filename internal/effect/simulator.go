// Package effect owns the transient entities of the cursor smudge: trail
// samples, ripples, particles and blur regions. A Simulator is advanced once
// per frame by its owner and is not safe for concurrent use.
package effect

import (
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

type Simulator struct {
	cfg           config.EffectsConfig
	rng           Rand
	width, height float64

	trails    []TrailPoint
	ripples   []Ripple
	particles []Particle
	blur      []BlurRegion

	start       time.Time
	lastSpawn   time.Time
	lastSpecial time.Time
}

// Stats is a cheap summary of the simulator, used for logging and dumps.
type Stats struct {
	Trails    int `json:"trails"`
	Ripples   int `json:"ripples"`
	Particles int `json:"particles"`
	Special   int `json:"special"`
	Blur      int `json:"blur"`
}

// New returns a simulator for a width×height viewport.
func New(cfg config.EffectsConfig, width, height float64, rng Rand) *Simulator {
	if rng == nil {
		rng = NewEntropyRand()
	}
	s := &Simulator{cfg: cfg, rng: rng, width: width, height: height}
	s.seedBlur()
	return s
}

// Resize changes the viewport used for spawning and bounds checks. Blur
// regions are reseeded when the viewport was empty before.
func (s *Simulator) Resize(width, height float64) {
	if width == s.width && height == s.height {
		return
	}
	empty := s.width <= 0 || s.height <= 0
	s.width, s.height = width, height
	if empty {
		s.seedBlur()
	}
}

func (s *Simulator) Size() (float64, float64) { return s.width, s.height }

// Step advances every collection to now: blur, ripples, trails, spawning,
// then particles. Particles age by one fixed frame step regardless of how
// much wall time passed.
func (s *Simulator) Step(now time.Time) {
	if s.start.IsZero() {
		s.start = now
		s.lastSpecial = now
	}
	s.driftBlur(s.Elapsed(now))
	s.advanceRipples(now)
	s.decayTrails(now)
	s.spawn(now)
	s.advanceParticles()
}

// Elapsed returns seconds since the first Step, the time base of every
// periodic animation.
func (s *Simulator) Elapsed(now time.Time) float64 {
	if s.start.IsZero() {
		return 0
	}
	return now.Sub(s.start).Seconds()
}

// AddTrail records a pointer sample, dropping the oldest past the cap.
func (s *Simulator) AddTrail(pos, vel vmath.Vec2, now time.Time) {
	if !pos.Finite() {
		return
	}
	if !vel.Finite() {
		vel = vmath.Vec2{}
	}
	s.trails = append(s.trails, TrailPoint{Pos: pos, Vel: vel, Born: now, Intensity: 1})
	if over := len(s.trails) - s.cfg.Trail.MaxPoints; over > 0 {
		s.trails = append(s.trails[:0], s.trails[over:]...)
	}
}

// The accessors below return the live slices; callers must not retain or
// modify them across a Step.

func (s *Simulator) Trails() []TrailPoint      { return s.trails }
func (s *Simulator) Ripples() []Ripple         { return s.ripples }
func (s *Simulator) Particles() []Particle     { return s.particles }
func (s *Simulator) BlurRegions() []BlurRegion { return s.blur }

func (s *Simulator) Snapshot() Stats {
	st := Stats{
		Trails:    len(s.trails),
		Ripples:   len(s.ripples),
		Particles: len(s.particles),
		Blur:      len(s.blur),
	}
	for _, p := range s.particles {
		if p.Class == Special {
			st.Special++
		}
	}
	return st
}
