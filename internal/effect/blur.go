package effect

import (
	"math"

	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// BlurRegion is a drifting soft-focus patch over the page.
type BlurRegion struct {
	Pos  vmath.Vec2
	Vel  vmath.Vec2
	Size float64
	Blur float64
}

// seedBlur spreads the regions across horizontal bands of the viewport.
func (s *Simulator) seedBlur() {
	bc := s.cfg.Blur
	r := s.rng
	s.blur = make([]BlurRegion, 0, bc.Count)
	band := s.width / float64(max(bc.Count, 1))
	for i := range bc.Count {
		s.blur = append(s.blur, BlurRegion{
			Pos:  vmath.V(band*float64(i)+r.Float64()*band, r.Float64()*s.height),
			Vel:  vmath.V((r.Float64()-0.5)*bc.Speed, (r.Float64()-0.5)*bc.Speed),
			Size: bc.Size.Lerp(r.Float64()),
			Blur: bc.Blur.Lerp(r.Float64()),
		})
	}
}

// driftBlur moves, bounces and re-blurs every region; t is elapsed seconds.
func (s *Simulator) driftBlur(t float64) {
	bc := s.cfg.Blur
	r := s.rng
	for i := range s.blur {
		b := &s.blur[i]
		b.Pos = b.Pos.Add(b.Vel)
		if b.Pos.X < 0 || b.Pos.X > s.width {
			b.Vel.X = -b.Vel.X
			b.Pos.X = vmath.Clamp(b.Pos.X, 0, s.width)
		}
		if b.Pos.Y < 0 || b.Pos.Y > s.height {
			b.Vel.Y = -b.Vel.Y
			b.Pos.Y = vmath.Clamp(b.Pos.Y, 0, s.height)
		}

		fi := float64(i)
		b.Blur = vmath.Clamp(1+math.Sin(t*0.8+fi*0.5)*4+math.Cos(t*0.6+fi)*3, 0.5, 12)

		if chance(r, bc.ResizeChance) {
			b.Size = bc.ResetSize.Lerp(r.Float64())
		}
		if chance(r, bc.TurnChance) {
			b.Vel = vmath.V((r.Float64()-0.5)*bc.ResetSpeed, (r.Float64()-0.5)*bc.ResetSpeed)
		}
	}
}
