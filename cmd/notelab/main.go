// Package main provides the notelab CLI: database setup, sweep execution and
// result export for historical portfolio backtests with structured notes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const version = "v1.0.0"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     "notelab",
		Short:   "Historical portfolio backtesting with structured notes",
		Version: version,
		Long: `notelab sweeps portfolios of equities, bonds and structured notes across
historical market windows and persists per-year trajectories and summary
metrics for analysis.

Typical flow:
  notelab setup-database   --params parameters.yaml
  notelab run-simulations  --params parameters.yaml
  notelab analyze          --params parameters.yaml`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("params", "parameters.yaml", "Path to the sweep parameter file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newSetupDatabaseCmd())
	rootCmd.AddCommand(newRunSimulationsCmd())
	rootCmd.AddCommand(newAnalyzeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// setupLogging applies the --verbose flag to the global logger.
func setupLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
