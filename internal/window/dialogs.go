package window

import (
	"errors"

	"github.com/iburimskiy/cursor-smudge/internal/audio"
	"github.com/ncruces/zenity"
)

// selectDocuments asks for one or more SVG files. A cancelled dialog
// returns no paths and no error.
func selectDocuments() ([]string, error) {
	paths, err := zenity.SelectFileMultiple(
		zenity.Title("Open SVG Files"),
		zenity.FileFilters{{
			Name:     "SVG",
			Patterns: []string{"*.svg"},
		}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil, nil
	}
	return paths, err
}

// selectTrack asks for one audio file, "" when cancelled.
func selectTrack() (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: audio.Patterns,
		}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	return path, err
}
