// Package commands wires the pingrep command-line interface.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pingrep/pingrep/pkg/appctx"
	"github.com/pingrep/pingrep/pkg/config"
)

const cliExecutable = "pingrep"

// NewCommand constructs the top-level pingrep CLI command, wiring global
// flags, configuration loading and logger setup.
func NewCommand() *cobra.Command {
	var (
		configFile     string
		verbosityCount int
		verbose        bool
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "pingrep probes host lists and writes spreadsheet latency reports",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A .env in the working directory may carry PINGREP_* variables.
			_ = godotenv.Load()

			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := mgr.Get()

			setupLogger(cfg.Log, verbose, verbosityCount)

			ctx := appctx.WithConfig(cmd.Context(), cfg)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// setupLogger configures the global zerolog logger. Explicit verbosity flags
// win over the configured level: --verbose forces debug, otherwise the -v
// count raises the level (1 => info, 2+ => debug).
func setupLogger(cfg config.LogConfig, verbose bool, verbosityCount int) {
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch {
	case verbose || verbosityCount >= 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case verbosityCount == 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		level, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
	}
}
