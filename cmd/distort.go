package cmd

import (
	"errors"
	"fmt"

	"github.com/iburimskiy/cursor-smudge/internal/svgdoc"
	"github.com/iburimskiy/cursor-smudge/internal/wave"
	"github.com/spf13/cobra"
)

func newDistortCmd() *cobra.Command {
	var (
		path, file string
		t          float64
		intensity  float64
		index      int
	)

	distortCmd := &cobra.Command{
		Use:   "distort",
		Short: "Print wave-distorted path data",
		Long: `Applies the wave distortion at time --time to a literal path (--path) or to
every path of an SVG file (--file), printing one distorted path per line.
Path indices follow <path> element order; an element without data prints an
empty line and still takes its index. Without --intensity each path uses the
animated per-path intensity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}

			var paths []string
			switch {
			case path != "" && file != "":
				return errors.New("--path and --file are mutually exclusive")
			case path != "":
				paths = []string{path}
			case file != "":
				doc, err := svgdoc.LoadFile(file)
				if err != nil {
					return err
				}
				paths = doc.Paths
			default:
				return errors.New("one of --path or --file is required")
			}

			out := cmd.OutOrStdout()
			for i, d := range paths {
				idx := index + i
				k := intensity
				if !cmd.Flags().Changed("intensity") {
					k = wave.Intensity(t, idx, cfg.Wave.BaseIntensity, cfg.Wave.Variation)
				}
				fmt.Fprintln(out, wave.Distort(d, t, k, idx))
			}
			return nil
		},
	}

	f := distortCmd.Flags()
	f.StringVarP(&path, "path", "p", "", "path data to distort")
	f.StringVarP(&file, "file", "f", "", "SVG file whose paths are distorted")
	f.Float64VarP(&t, "time", "t", 0, "animation time in seconds")
	f.Float64VarP(&intensity, "intensity", "i", 0, "wave intensity (default animated per path)")
	f.IntVar(&index, "index", 0, "index of the first path")
	return distortCmd
}
