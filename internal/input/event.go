// Package input turns host pointer activity into simulator samples.
package input

import (
	"time"

	"github.com/iburimskiy/cursor-smudge/internal/vmath"
)

type Kind int

const (
	Move Kind = iota
	Tap
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Tap:
		return "tap"
	default:
		return "unknown"
	}
}

// Event is a host-neutral pointer event. Mouse motion, touch drags and
// scripted paths all become Move; clicks and touch starts become Tap.
type Event struct {
	Kind Kind
	Pos  vmath.Vec2
	At   time.Time
}
