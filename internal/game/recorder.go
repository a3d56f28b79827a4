package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/effect"
	"github.com/iburimskiy/cursor-smudge/internal/input"
	"github.com/iburimskiy/cursor-smudge/internal/render"
	"github.com/iburimskiy/cursor-smudge/internal/svgdoc"
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// recordEpoch anchors the virtual clock so recordings are reproducible.
var recordEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// StateFile is the name of the per-frame state dump inside the output
// directory.
const StateFile = "state.json"

// composeFrame is replaced in tests.
var composeFrame = render.Compose

// Recorder renders frames headlessly with a scripted pointer and writes
// them as numbered PNG files.
type Recorder struct {
	cfg           *config.Config
	logger        *zap.Logger
	width, height int
	docs          []*svgdoc.Document
}

// Result describes a finished recording.
type Result struct {
	Dir    string
	Frames int
}

func NewRecorder(cfg *config.Config, width, height int, docs []*svgdoc.Document, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{cfg: cfg, logger: logger.Named("record"), width: width, height: height, docs: docs}
}

// Run renders cfg.Record.Frames frames. Encoding runs on up to
// cfg.Record.Workers goroutines; the first failure or a cancelled ctx stops
// the recording.
func (r *Recorder) Run(ctx context.Context) (Result, error) {
	rc := r.cfg.Record
	dir, err := homedir.Expand(rc.OutDir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to expand output dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output dir: %w", err)
	}

	page, err := render.NewRaster(r.width, r.height)
	if err != nil {
		return Result{}, err
	}
	canvas, err := render.NewRaster(r.width, r.height)
	if err != nil {
		return Result{}, err
	}

	clock := NewStepClock(recordEpoch, time.Second/time.Duration(rc.FPS))
	w, h := float64(r.width), float64(r.height)
	driver := NewDriver(r.cfg, w, h, r.logger, Options{
		Clock: clock,
		Rand:  effect.NewRand(rc.Seed),
		Docs:  r.docs,
	})
	defer driver.Close()
	sweep := input.NewSweep(w, h)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Workers)

	var states []State
	written := 0
	for i := range rc.Frames {
		if gctx.Err() != nil {
			break
		}
		for _, ev := range sweep.Events(clock.Now()) {
			driver.Handle(ev)
		}
		driver.Tick()

		page.Reset(render.Paper)
		driver.Draw(page, canvas)
		img, err := composeFrame(page, canvas, driver.Overlay())
		if err != nil {
			// encoders already started must not outlive Run
			_ = g.Wait()
			return Result{Dir: dir}, err
		}
		if rc.DumpState {
			states = append(states, driver.State())
		}

		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
		g.Go(func() error { return writeFrame(gctx, path, img) })
		written++
		clock.Advance()
	}

	if err := g.Wait(); err != nil {
		return Result{Dir: dir}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{Dir: dir}, err
	}
	if rc.DumpState {
		if err := writeStates(filepath.Join(dir, StateFile), states); err != nil {
			return Result{Dir: dir}, err
		}
	}

	r.logger.Info("Recording finished",
		zap.String("dir", dir), zap.Int("frames", written), zap.Any("last", driver.Sim().Snapshot()))
	return Result{Dir: dir, Frames: written}, nil
}

func writeFrame(ctx context.Context, path string, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeStates(path string, states []State) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create state dump: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(states)
}
