package input

import (
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/effect"
	"github.com/iburimskiy/cursor-smudge/internal/vmath"
	"golang.org/x/time/rate"
)

// Sink receives trail samples and ripples. *effect.Simulator implements it.
type Sink interface {
	AddTrail(pos, vel vmath.Vec2, now time.Time)
	AddRipple(origin vmath.Vec2, now time.Time, src effect.RippleSource)
}

// Tracker keeps the current pointer and forwards samples to a Sink. Ripple
// creation is throttled with token buckets driven by event timestamps, so
// replayed or scripted input behaves the same as live input.
type Tracker struct {
	sink     Sink
	moveGate *rate.Limiter
	tapGate  *rate.Limiter

	pointer vmath.Vec2
	vel     vmath.Vec2
	known   bool
}

func NewTracker(sink Sink, cfg config.RippleConfig) *Tracker {
	return &Tracker{
		sink:     sink,
		moveGate: gate(cfg.MoveInterval),
		tapGate:  gate(cfg.TapInterval),
	}
}

// gate returns nil for a non-positive interval, meaning ungated.
func gate(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

func allow(l *rate.Limiter, at time.Time) bool {
	return l == nil || l.AllowN(at, 1)
}

// Handle applies one event. Events with non-finite coordinates are dropped
// and Handle reports false.
func (t *Tracker) Handle(ev Event) bool {
	if !ev.Pos.Finite() {
		return false
	}
	switch ev.Kind {
	case Move:
		if t.known {
			t.vel = ev.Pos.Sub(t.pointer)
		}
		t.pointer, t.known = ev.Pos, true
		t.sink.AddTrail(ev.Pos, t.vel, ev.At)
		if allow(t.moveGate, ev.At) {
			t.sink.AddRipple(ev.Pos, ev.At, effect.FromMove)
		}
	case Tap:
		if allow(t.tapGate, ev.At) {
			t.sink.AddRipple(ev.Pos, ev.At, effect.FromTap)
		}
	default:
		return false
	}
	return true
}

// SetPointer moves the pointer without leaving a trail, as the autonomous
// wanderer does.
func (t *Tracker) SetPointer(pos vmath.Vec2) {
	if !pos.Finite() {
		return
	}
	t.pointer, t.known = pos, true
}

// Pointer returns the last known pointer and whether one has been seen.
func (t *Tracker) Pointer() (vmath.Vec2, bool) {
	return t.pointer, t.known
}

// Velocity is the displacement between the last two Move events.
func (t *Tracker) Velocity() vmath.Vec2 { return t.vel }
