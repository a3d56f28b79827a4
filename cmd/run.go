package cmd

import (
	"errors"

	"github.com/iburimskiy/cursor-smudge/internal/observability"
	"github.com/spf13/cobra"
)

func newRunCmd(host Host) *cobra.Command {
	var width, height int

	runCmd := &cobra.Command{
		Use:   "run [svg files...]",
		Short: "Open the effect in a window",
		Long: `Opens a window showing the SVG files as a grid of wave-distorted cells
under the smudge effect. Press O to open SVG files, A to play an audio file
whose loudness drives the waves, Space to pause the audio and Esc or Q to quit.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("width") {
				cfg.Window.Width = width
			}
			if cmd.Flags().Changed("height") {
				cfg.Window.Height = height
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if host == nil {
				return errors.New("this build has no window host")
			}
			logger := observability.GetLogger()
			return host(cfg, loadDocuments(logger, args), logger)
		},
	}

	runCmd.Flags().IntVar(&width, "width", 0, "window width (default from config)")
	runCmd.Flags().IntVar(&height, "height", 0, "window height (default from config)")
	return runCmd
}
