package effect

import (
	"math"
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// TrailPoint is one pointer sample. Pos is never perturbed after creation;
// the jitter seen on screen comes from RenderPos.
type TrailPoint struct {
	Pos       vmath.Vec2
	Vel       vmath.Vec2
	Born      time.Time
	Intensity float64
}

// RenderPos returns the sample position with its time-dependent wobble at
// elapsed time t (seconds). amp is the wobble amplitude at full intensity.
func (p TrailPoint) RenderPos(t, amp float64) vmath.Vec2 {
	return vmath.Vec2{
		X: p.Pos.X + math.Sin(t*2+p.Pos.X*0.01)*amp*p.Intensity,
		Y: p.Pos.Y + math.Cos(t*1.5+p.Pos.Y*0.01)*amp*p.Intensity,
	}
}

func (p TrailPoint) valid() bool {
	return p.Pos.Finite() && vmath.IsFinite(p.Intensity)
}

// decayTrails recomputes intensities and drops faded points in place.
func (s *Simulator) decayTrails(now time.Time) {
	kept := s.trails[:0]
	for _, p := range s.trails {
		age := now.Sub(p.Born).Seconds()
		if age < 0 {
			age = 0
		}
		p.Intensity = math.Max(0, 1-age*s.cfg.Trail.DecayRate)
		if p.Intensity <= 0 || !p.valid() {
			continue
		}
		kept = append(kept, p)
	}
	clear(s.trails[len(kept):])
	s.trails = kept
}
