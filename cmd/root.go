package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iburimskiy/cursor-smudge/internal/config"
	"github.com/iburimskiy/cursor-smudge/internal/observability"
	"github.com/iburimskiy/cursor-smudge/internal/svgdoc"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var osExit = os.Exit

type configKey struct{}

// Host opens the live window. main wires in window.Run; keeping it a
// parameter leaves this package free of the graphics stack.
type Host func(cfg *config.Config, docs []*svgdoc.Document, logger *zap.Logger) error

// newRootCmd builds the command tree. A bare `smudge` behaves like
// `smudge run`.
func newRootCmd(host Host) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "smudge",
		Short:         "A pointer-driven smudge effect over wave-distorted SVG paths.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)
			if err := initializeConfig(cmd, v, cfgFile); err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "smudge"})
				return err
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "smudge"})
				return err
			}
			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Configuration loaded", zap.String("file", v.ConfigFileUsed()))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			observability.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./smudge.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	runCmd := newRunCmd(host)
	rootCmd.Args = runCmd.Args
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.AddCommand(runCmd, newRecordCmd(), newDistortCmd())
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(host Host) {
	if err := newRootCmd(host).Execute(); err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		observability.Sync()
		osExit(1)
	}
}

// initializeConfig reads the config file and SMUDGE_ environment variables
// into v. A missing default config file is not an error.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + "/.config/smudge")
		}
		v.SetConfigName("smudge")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SMUDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		v.Set("logger.level", f.Value.String())
	}
	return nil
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// loadDocuments loads the SVG files it can and warns about the rest.
func loadDocuments(logger *zap.Logger, paths []string) []*svgdoc.Document {
	docs, err := svgdoc.LoadFiles(paths)
	if err != nil {
		logger.Warn("Skipping SVG files that failed to load", zap.Error(err))
	}
	return docs
}
