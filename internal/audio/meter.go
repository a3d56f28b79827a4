package audio

import (
	"math"

	"github.com/iburimskiy/cursor-smudge/internal/config"
)

const (
	window = 2048
	bands  = 64
)

// SampleSource is what a Meter reads from. *Tap implements it.
type SampleSource interface {
	Snapshot(n int) [][2]float64
}

// Meter folds recent samples into per-band magnitudes and an overall level,
// each exponentially smoothed across updates.
type Meter struct {
	cfg   config.AudioConfig
	src   SampleSource
	bands []float64
	level float64
}

func NewMeter(cfg config.AudioConfig) *Meter {
	return &Meter{cfg: cfg, bands: make([]float64, bands)}
}

// Attach switches the meter to a new source; nil detaches it and lets the
// level decay to silence.
func (m *Meter) Attach(src SampleSource) { m.src = src }

// Update reads the latest window of samples.
func (m *Meter) Update() {
	var samples [][2]float64
	if m.src != nil {
		samples = m.src.Snapshot(window)
	}
	s := m.cfg.Smoothing
	seg := max(1, len(samples)/bands)

	var sum float64
	for i := range m.bands {
		mag := 0.0
		start := i * seg
		if start < len(samples) {
			mag = compress(rms(samples[start:min(start+seg, len(samples))]))
		}
		m.bands[i] = s*m.bands[i] + (1-s)*mag
		sum += m.bands[i]
	}
	m.level = sum / float64(len(m.bands))
}

// Level is the smoothed loudness in [0, 1].
func (m *Meter) Level() float64 { return m.level }

// Boost is the wave intensity added for the current level.
func (m *Meter) Boost() float64 { return m.level * m.cfg.Gain }

// Bands returns the smoothed band magnitudes, low to high.
func (m *Meter) Bands() []float64 { return m.bands }

func rms(samples [][2]float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		mono := (s[0] + s[1]) * 0.5
		sumSquares += mono * mono
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// compress lifts quiet passages so the visuals react to them too.
func compress(v float64) float64 { return math.Pow(v, 0.3) }
