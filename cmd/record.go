package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iburimskiy/cursor-smudge/internal/game"
	"github.com/iburimskiy/cursor-smudge/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRecordCmd() *cobra.Command {
	var (
		frames, fps, workers int
		width, height        int
		outDir               string
		seed                 uint64
		dumpState            bool
	)

	recordCmd := &cobra.Command{
		Use:   "record [svg files...]",
		Short: "Render frames headlessly to PNG files",
		Long: `Renders the effect without a window, driving the pointer along a scripted
figure-eight with periodic taps, and writes one PNG per frame. Runs are
reproducible for a given seed.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("frames") {
				cfg.Record.Frames = frames
			}
			if flags.Changed("fps") {
				cfg.Record.FPS = fps
			}
			if flags.Changed("workers") {
				cfg.Record.Workers = workers
			}
			if flags.Changed("out") {
				cfg.Record.OutDir = outDir
			}
			if flags.Changed("seed") {
				cfg.Record.Seed = seed
			}
			if flags.Changed("dump-state") {
				cfg.Record.DumpState = dumpState
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if width <= 0 {
				width = cfg.Window.Width
			}
			if height <= 0 {
				height = cfg.Window.Height
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := observability.GetLogger()
			rec := game.NewRecorder(cfg, width, height, loadDocuments(logger, args), logger)
			res, err := rec.Run(ctx)
			if err != nil {
				return fmt.Errorf("recording failed: %w", err)
			}
			logger.Debug("Recorder returned", zap.String("dir", res.Dir))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", res.Frames, res.Dir)
			return nil
		},
	}

	f := recordCmd.Flags()
	f.IntVarP(&frames, "frames", "n", 0, "number of frames (default from config)")
	f.IntVar(&fps, "fps", 0, "frames per second of simulated time (default from config)")
	f.IntVar(&workers, "workers", 0, "parallel PNG encoders (default from config)")
	f.StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	f.Uint64Var(&seed, "seed", 0, "random seed (default from config)")
	f.BoolVar(&dumpState, "dump-state", false, "also write a per-frame JSON state dump")
	f.IntVar(&width, "width", 0, "frame width (default window.width)")
	f.IntVar(&height, "height", 0, "frame height (default window.height)")
	return recordCmd
}
