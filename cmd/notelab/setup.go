package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"portfolio-note-lab/internal/config"
	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/marketdata"
	"portfolio-note-lab/internal/notes"
	"portfolio-note-lab/internal/storage/migrations"
	"portfolio-note-lab/internal/storage/postgres"
)

func newSetupDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup-database",
		Short: "Create the schema and load market and note parameter tables",
		Long: `Applies the schema migrations, loads the historical market CSV into
market_conditions, derives (or loads) the note participation table into
note_parameters, and snapshots the parameter file for provenance.`,
		RunE: runSetupDatabase,
	}
	cmd.Flags().String("db", "", "Postgres connection string (overrides output_parameters.database_url)")
	return cmd
}

func runSetupDatabase(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	ctx := cmd.Context()

	paramsPath, _ := cmd.Flags().GetString("params")
	cfg, err := config.Load(paramsPath)
	if err != nil {
		return err
	}

	dsn := resolveDSN(cmd, cfg)
	if dsn == "" {
		return fmt.Errorf("setup-database requires a database: set output_parameters.database_url or pass --db")
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	return setupDatabase(ctx, cfg, paramsPath, pool)
}

// setupDatabase applies migrations and loads the market, note-parameter and
// parameter-snapshot tables. Idempotent: re-running it upserts the same rows.
func setupDatabase(ctx context.Context, cfg *config.Config, paramsPath string, pool *postgres.Pool) error {
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	log.Info().Msg("schema migrations applied")

	records, err := marketdata.LoadMarketCSV(cfg.Market.CSVPath)
	if err != nil {
		return fmt.Errorf("load market data: %w", err)
	}
	recordPtrs := make([]*domain.YearlyMarketRecord, len(records))
	for i := range records {
		recordPtrs[i] = &records[i]
	}
	if err := postgres.NewMarketConditionsStore(pool).UpsertBulk(ctx, recordPtrs); err != nil {
		return fmt.Errorf("persist market conditions: %w", err)
	}
	log.Info().Int("years", len(records)).Msg("market conditions loaded")

	params, err := noteTableFromConfig(cfg, records)
	if err != nil {
		return err
	}
	paramPtrs := make([]*domain.NoteParameters, len(params))
	for i := range params {
		paramPtrs[i] = &params[i]
	}
	if err := postgres.NewNoteParameterStore(pool).UpsertBulk(ctx, paramPtrs); err != nil {
		return fmt.Errorf("persist note parameters: %w", err)
	}
	log.Info().Int("rows", len(params)).Msg("note parameter table loaded")

	snapshot := &domain.ParameterFileSnapshot{
		Name:    filepath.Base(paramsPath),
		Content: string(cfg.Raw),
	}
	if err := postgres.NewParameterFileStore(pool).Save(ctx, snapshot); err != nil {
		return fmt.Errorf("snapshot parameter file: %w", err)
	}
	log.Info().Int64("snapshot_id", snapshot.ID).Msg("parameter file snapshot saved")

	return nil
}

// noteTableFromConfig loads a precomputed participation table when one is
// configured, otherwise derives it from the market history.
func noteTableFromConfig(cfg *config.Config, records []domain.YearlyMarketRecord) ([]domain.NoteParameters, error) {
	if cfg.Notes.ParametersCSV != "" {
		params, err := marketdata.LoadNoteCSV(cfg.Notes.ParametersCSV)
		if err != nil {
			return nil, fmt.Errorf("load note parameters: %w", err)
		}
		return params, nil
	}
	params, err := notes.DeriveParameters(records, cfg.Notes.ProtectionLevels,
		domain.NoteType(cfg.Notes.NoteType), cfg.Notes.IVFactor)
	if err != nil {
		return nil, fmt.Errorf("derive note parameters: %w", err)
	}
	return params, nil
}

// resolveDSN prefers the --db flag over the parameter file.
func resolveDSN(cmd *cobra.Command, cfg *config.Config) string {
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		return dsn
	}
	return cfg.Output.DatabaseURL
}
