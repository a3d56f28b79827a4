package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/mitchellh/go-homedir"
)

var ErrUnsupported = errors.New("unsupported audio format")

// Patterns are the file patterns Open understands, for file dialogs.
var Patterns = []string{"*.wav", "*.mp3", "*.flac"}

// Track is an open, decoded audio file. Close releases the decoder and the
// file.
type Track struct {
	Path     string
	Streamer beep.StreamSeekCloser
	Format   beep.Format
}

// Open decodes a wav, mp3 or flac file chosen by extension.
func Open(path string) (*Track, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %q: %w", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return &Track{Path: path, Streamer: streamer, Format: format}, nil
}

// Duration is the track length.
func (t *Track) Duration() time.Duration {
	return t.Format.SampleRate.D(t.Streamer.Len())
}

func (t *Track) Close() error {
	return t.Streamer.Close()
}

// FormatDuration formats a duration as MM:SS.
func FormatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
