package input

import (
	"math"
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

// Sweep is a scripted pointer for headless recording: a figure-eight across
// the viewport with a tap every TapEvery.
type Sweep struct {
	Center   vmath.Vec2
	Extent   vmath.Vec2
	Period   time.Duration
	TapEvery time.Duration

	start   time.Time
	lastTap time.Time
}

// NewSweep covers the middle two thirds of a width×height viewport.
func NewSweep(width, height float64) *Sweep {
	return &Sweep{
		Center:   vmath.V(width/2, height/2),
		Extent:   vmath.V(width/3, height/3),
		Period:   6 * time.Second,
		TapEvery: 1500 * time.Millisecond,
	}
}

// Events returns the input produced at now, in delivery order.
func (s *Sweep) Events(now time.Time) []Event {
	if s.start.IsZero() {
		s.start, s.lastTap = now, now
	}
	phase := 2 * math.Pi * float64(now.Sub(s.start)) / float64(s.Period)
	pos := vmath.V(
		s.Center.X+s.Extent.X*math.Sin(phase),
		s.Center.Y+s.Extent.Y*math.Sin(2*phase)/2,
	)
	events := []Event{{Kind: Move, Pos: pos, At: now}}
	if s.TapEvery > 0 && now.Sub(s.lastTap) >= s.TapEvery {
		s.lastTap = now
		events = append(events, Event{Kind: Tap, Pos: pos, At: now})
	}
	return events
}
