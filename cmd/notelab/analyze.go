package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"portfolio-note-lab/internal/config"
	"portfolio-note-lab/internal/reporting"
	"portfolio-note-lab/internal/storage"
	"portfolio-note-lab/internal/storage/postgres"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Export persisted sweep results as CSV",
		Long: `Reads persisted results from the database and writes summary_results.csv
to the results directory, plus one trajectory CSV per completed scenario when
trajectory export is enabled.`,
		RunE: runAnalyze,
	}
	cmd.Flags().String("db", "", "Postgres connection string (overrides output_parameters.database_url)")
	cmd.Flags().String("output", "", "Output directory (overrides output_parameters.results_directory)")
	cmd.Flags().Bool("completed-only", false, "Export only scenarios with a completed result")
	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	ctx := cmd.Context()

	paramsPath, _ := cmd.Flags().GetString("params")
	cfg, err := config.Load(paramsPath)
	if err != nil {
		return err
	}

	dsn := resolveDSN(cmd, cfg)
	if dsn == "" {
		return fmt.Errorf("analyze requires a database: set output_parameters.database_url or pass --db")
	}

	dir := cfg.Output.ResultsDirectory
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		dir = out
	}

	var filter storage.ScenarioFilter
	if only, _ := cmd.Flags().GetBool("completed-only"); only {
		completed := true
		filter.Completed = &completed
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	exporter := reporting.NewExporter(postgres.NewResultStore(pool), postgres.NewYearlyStateStore(pool))

	n, err := exporter.ExportSummary(ctx, dir, filter)
	if err != nil {
		return fmt.Errorf("export summary: %w", err)
	}
	log.Info().Int("rows", n).Str("dir", dir).Msg("summary exported")

	if cfg.Output.ExportTrajectories {
		n, err := exporter.ExportTrajectories(ctx, dir, filter)
		if err != nil {
			return fmt.Errorf("export trajectories: %w", err)
		}
		log.Info().Int("files", n).Msg("trajectories exported")
	}

	return nil
}
