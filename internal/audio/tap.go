// Package audio turns a playing track into a loudness signal that drives
// the wave intensity.
package audio

import (
	"sync"

	"github.com/faiface/beep"
)

// Tap wraps a beep.Streamer and records the last N samples into a ring
// buffer so the frame loop can read what was just played. Stream runs on
// the speaker goroutine; Snapshot on the frame goroutine.
type Tap struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	mu        sync.RWMutex
}

func NewTap(src beep.Streamer, ringSize int) *Tap {
	return &Tap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for _, s := range samples[:n] {
			t.buffer[t.nextIndex] = s
			t.nextIndex = (t.nextIndex + 1) % len(t.buffer)
		}
		t.mu.Unlock()
	}
	return n, ok
}

func (t *Tap) Err() error { return t.Source.Err() }

// Snapshot returns the last n samples in chronological order.
func (t *Tap) Snapshot(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	size := len(t.buffer)
	n = min(n, size)
	out := make([][2]float64, n)
	start := (t.nextIndex - n + size) % size
	for i := range out {
		out[i] = t.buffer[(start+i)%size]
	}
	return out
}
