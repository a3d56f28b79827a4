package window

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/iburimskiy/cursor-smudge/internal/audio"
	"github.com/iburimskiy/cursor-smudge/internal/config"
	"go.uber.org/zap"
)

// player streams one track at a time through an audio.Tap. Its fields are
// guarded by the speaker lock, which the end-of-track callback already
// holds when it runs.
type player struct {
	logger   *zap.Logger
	ringSize int

	track    *audio.Track
	ctrl     *beep.Ctrl
	tap      *audio.Tap
	rate     beep.SampleRate
	initDone bool
}

func newPlayer(cfg config.AudioConfig, logger *zap.Logger) *player {
	return &player{logger: logger.Named("player"), ringSize: cfg.RingSize}
}

// Load stops the current track and starts playing path.
func (p *player) Load(path string) error {
	track, err := audio.Open(path)
	if err != nil {
		return err
	}

	// Prepare audio chain: streamer -> tap -> ctrl
	tap := audio.NewTap(track.Streamer, p.ringSize)
	ctrl := &beep.Ctrl{Streamer: tap}

	bufferSize := track.Format.SampleRate.N(time.Second / 20)
	switch {
	case !p.initDone:
		if err := speaker.Init(track.Format.SampleRate, bufferSize); err != nil {
			_ = track.Close()
			return err
		}
		p.initDone = true
	case p.rate != track.Format.SampleRate:
		// Init restarts the device with an empty mixer.
		if err := speaker.Init(track.Format.SampleRate, bufferSize); err != nil {
			_ = track.Close()
			return err
		}
	default:
		speaker.Clear()
	}

	speaker.Lock()
	p.closeTrack()
	p.track, p.ctrl, p.tap, p.rate = track, ctrl, tap, track.Format.SampleRate
	speaker.Unlock()

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		if p.track == track {
			p.closeTrack()
		}
	})))
	p.logger.Info("Playing", zap.String("path", track.Path), zap.Duration("duration", track.Duration()))
	return nil
}

// TogglePause pauses or resumes playback and reports whether it is paused.
func (p *player) TogglePause() bool {
	speaker.Lock()
	defer speaker.Unlock()
	if p.ctrl == nil {
		return false
	}
	p.ctrl.Paused = !p.ctrl.Paused
	return p.ctrl.Paused
}

// Tap is the sample source of the playing track, nil when nothing plays.
func (p *player) Tap() *audio.Tap {
	speaker.Lock()
	defer speaker.Unlock()
	return p.tap
}

// Progress returns the playback position and the track length.
func (p *player) Progress() (time.Duration, time.Duration, bool) {
	speaker.Lock()
	defer speaker.Unlock()
	if p.track == nil {
		return 0, 0, false
	}
	pos := p.rate.D(p.track.Streamer.Position())
	return pos, p.track.Duration(), true
}

func (p *player) Close() {
	if !p.initDone {
		return
	}
	speaker.Clear()
	speaker.Lock()
	p.closeTrack()
	speaker.Unlock()
	speaker.Close()
}

// closeTrack must be called with the speaker lock held.
func (p *player) closeTrack() {
	if p.track == nil {
		return
	}
	if err := p.track.Close(); err != nil {
		p.logger.Warn("Failed to close track", zap.Error(err))
	}
	p.track, p.ctrl, p.tap = nil, nil, nil
}
