package effect

import (
	"math"
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// Trajectory selects how a particle moves.
type Trajectory int

const (
	Straight Trajectory = iota
	Orbital
)

// Class separates ordinary particles from the rare special streaks, which
// ignore the off-screen bounds and only expire.
type Class int

const (
	Normal Class = iota
	Special
)

// Particle is one moving dot. For orbital particles Angle is the state and
// Pos is recomputed from Center, Radius and Angle on every tick.
type Particle struct {
	Pos        vmath.Vec2
	Vel        vmath.Vec2 // per tick
	Life       time.Duration
	MaxLife    time.Duration
	Size       float64
	Hue        float64
	Trajectory Trajectory
	Class      Class

	Center          vmath.Vec2
	Radius          float64
	Angle           float64
	AngularVelocity float64 // radians per tick
}

// NewOrbital builds an orbital particle positioned on its circle.
func NewOrbital(center vmath.Vec2, radius, angle, angularVelocity, size float64, maxLife time.Duration) Particle {
	return Particle{
		Pos:             vmath.Polar(center, radius, angle),
		MaxLife:         maxLife,
		Size:            size,
		Hue:             90,
		Trajectory:      Orbital,
		Center:          center,
		Radius:          radius,
		Angle:           angle,
		AngularVelocity: angularVelocity,
	}
}

// NewStraight builds a particle moving at a constant per-tick velocity.
func NewStraight(pos, vel vmath.Vec2, size float64, maxLife time.Duration) Particle {
	return Particle{Pos: pos, Vel: vel, MaxLife: maxLife, Size: size, Hue: 90, Trajectory: Straight}
}

// Fade is the render alpha: 1 at birth, 0.7 at expiry.
func (p Particle) Fade() float64 {
	if p.MaxLife <= 0 {
		return 1
	}
	return 1 - float64(p.Life)/float64(p.MaxLife)*0.3
}

func (p Particle) valid() bool {
	return p.Pos.Finite() && vmath.IsFinite(p.Size) && p.Size > 0
}

func (p *Particle) advance(step time.Duration) {
	switch p.Trajectory {
	case Orbital:
		p.Angle += p.AngularVelocity
		p.Pos = vmath.Polar(p.Center, p.Radius, p.Angle)
	default:
		p.Pos = p.Pos.Add(p.Vel)
	}
	p.Life += step
}

// AddParticle appends p if it is valid.
func (s *Simulator) AddParticle(p Particle) {
	if p.valid() {
		s.particles = append(s.particles, p)
	}
}

func (s *Simulator) advanceParticles() {
	m := s.cfg.Bounds
	kept := s.particles[:0]
	for _, p := range s.particles {
		p.advance(s.cfg.FrameStep)
		if p.Life >= p.MaxLife {
			continue
		}
		if p.Class != Special &&
			(p.Pos.X < -m || p.Pos.X > s.width+m || p.Pos.Y < -m || p.Pos.Y > s.height+m) {
			continue
		}
		if !p.valid() {
			continue
		}
		kept = append(kept, p)
	}
	clear(s.particles[len(kept):])
	s.particles = kept
}

// spawn runs the three independent spawners for one tick.
func (s *Simulator) spawn(now time.Time) {
	if chance(s.rng, s.cfg.Small.Chance) && now.Sub(s.lastSpawn) > s.cfg.Small.MinInterval {
		s.spawnBurst(s.cfg.Small)
		s.lastSpawn = now
	}
	// The large gate shares the last-spawn clock with the small class.
	if chance(s.rng, s.cfg.Large.Chance) && now.Sub(s.lastSpawn) > s.cfg.Large.MinInterval {
		s.spawnBurst(s.cfg.Large)
		s.lastSpawn = now
	}
	if now.Sub(s.lastSpecial) > s.cfg.Special.Interval.Lerp(s.rng.Float64()) {
		s.spawnSpecial()
		s.lastSpecial = now
	}
}

func (s *Simulator) spawnBurst(sc config.SpawnConfig) {
	n := 1 + intn(s.rng, sc.MaxCount)
	for range n {
		if chance(s.rng, sc.StraightChance) {
			s.AddParticle(s.edgeParticle(sc))
		} else {
			s.AddParticle(s.orbitalParticle(sc))
		}
	}
}

// edgeParticle enters from a random viewport edge heading inward.
func (s *Simulator) edgeParticle(sc config.SpawnConfig) Particle {
	r := s.rng
	lateral := func() float64 { return (r.Float64() - 0.5) * 2 * sc.Lateral }
	var pos, vel vmath.Vec2
	switch intn(r, 4) {
	case 0: // top
		pos = vmath.V(r.Float64()*s.width, 0)
		vel = vmath.V(lateral(), sc.Speed.Lerp(r.Float64()))
	case 1: // right
		pos = vmath.V(s.width, r.Float64()*s.height)
		vel = vmath.V(-sc.Speed.Lerp(r.Float64()), lateral())
	case 2: // bottom
		pos = vmath.V(r.Float64()*s.width, s.height)
		vel = vmath.V(lateral(), -sc.Speed.Lerp(r.Float64()))
	default: // left
		pos = vmath.V(0, r.Float64()*s.height)
		vel = vmath.V(sc.Speed.Lerp(r.Float64()), lateral())
	}
	p := NewStraight(pos, vel, sc.Size.Lerp(r.Float64()), sc.StraightLife.Lerp(r.Float64()))
	p.Hue = hue(r)
	return p
}

func (s *Simulator) orbitalParticle(sc config.SpawnConfig) Particle {
	r := s.rng
	center := vmath.V(r.Float64()*s.width, r.Float64()*s.height)
	radius := sc.OrbitRadius.Lerp(r.Float64())
	angle := r.Float64() * 2 * math.Pi
	omega := sc.AngularVelocity.Lerp(r.Float64()) * sign(r)
	p := NewOrbital(center, radius, angle, omega, sc.Size.Lerp(r.Float64()), sc.OrbitalLife.Lerp(r.Float64()))
	p.Hue = hue(r)
	return p
}

// spawnSpecial launches one streak whose speed is fixed by the viewport
// diagonal and whose lifetime covers the chosen travel distance.
func (s *Simulator) spawnSpecial() {
	r := s.rng
	sp := s.cfg.Special
	diag := math.Hypot(s.width, s.height)
	if diag == 0 {
		return
	}
	origin := vmath.V(r.Float64()*s.width, r.Float64()*s.height)
	distance := diag * sp.Distance.Lerp(r.Float64())
	angle := r.Float64() * 2 * math.Pi

	perTick := diag * float64(s.cfg.FrameStep) / float64(sp.Crossing)
	p := NewStraight(origin, vmath.Polar(vmath.Vec2{}, perTick, angle), sp.Size.Lerp(r.Float64()),
		time.Duration(float64(sp.Crossing)*distance/diag))
	p.Class = Special
	s.AddParticle(p)
}

func hue(r Rand) float64 { return 30 + r.Float64()*120 }
