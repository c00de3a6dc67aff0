package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"portfolio-note-lab/internal/config"
	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/marketdata"
	"portfolio-note-lab/internal/observability"
	"portfolio-note-lab/internal/reporting"
	"portfolio-note-lab/internal/simulator"
	"portfolio-note-lab/internal/storage"
	"portfolio-note-lab/internal/storage/memory"
	"portfolio-note-lab/internal/storage/postgres"
	"portfolio-note-lab/internal/sweep"
)

func newRunSimulationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-simulations",
		Short: "Expand the parameter grid and run every scenario",
		Long: `Expands the parameter file into the full scenario grid, runs each
scenario across a bounded worker pool and persists trajectories and summary
metrics. Scenarios with a completed result are skipped, so an interrupted
sweep resumes where it left off.

Without a configured database the sweep runs against in-memory stores and
exports CSVs to the results directory before exiting.`,
		RunE: runSimulations,
	}
	cmd.Flags().String("db", "", "Postgres connection string (overrides output_parameters.database_url)")
	cmd.Flags().Int("workers", 0, "Worker pool size (0 = available parallelism - 1)")
	cmd.Flags().Bool("skip-setup", false, "Assume setup-database already ran; do not touch schema or input tables")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

// sweepStores bundles the persistence backends for one sweep.
type sweepStores struct {
	scenarios storage.ScenarioStore
	states    storage.YearlyStateStore
	results   storage.ResultStore
	market    storage.MarketConditionsStore
	notes     storage.NoteParameterStore
}

func runSimulations(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	ctx := cmd.Context()

	paramsPath, _ := cmd.Flags().GetString("params")
	cfg, err := config.Load(paramsPath)
	if err != nil {
		return err
	}

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		go func() {
			log.Info().Str("addr", addr).Msg("serving metrics")
			if err := http.ListenAndServe(addr, observability.Handler()); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	dsn := resolveDSN(cmd, cfg)
	var stores *sweepStores
	if dsn != "" {
		pool, err := postgres.NewPool(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if skip, _ := cmd.Flags().GetBool("skip-setup"); !skip {
			if err := setupDatabase(ctx, cfg, paramsPath, pool); err != nil {
				return err
			}
		}
		stores = postgresStores(pool)
	} else {
		stores = memoryStores()
	}

	market, noteTable, err := loadInputs(cmd, cfg, stores, dsn != "")
	if err != nil {
		return err
	}

	lastYear, err := market.LastYear()
	if err != nil {
		return fmt.Errorf("market data is empty: %w", err)
	}

	grid := sweep.ExpandGrid(cfg, lastYear)
	if len(grid) == 0 {
		return errors.New("parameter grid expanded to zero runnable scenarios")
	}
	log.Info().
		Int("scenarios", len(grid)).
		Int("last_data_year", lastYear).
		Msg("grid expanded")

	workers, _ := cmd.Flags().GetInt("workers")
	orch := sweep.New(sweep.Options{
		Simulator:     simulator.New(market, noteTable),
		ScenarioStore: stores.scenarios,
		StateStore:    stores.states,
		ResultStore:   stores.results,
		Workers:       workers,
		Logger:        log.Logger,
	})

	started := time.Now()
	summary, err := orch.Run(ctx, grid)
	if summary != nil {
		log.Info().
			Int("total", summary.Total).
			Int("completed", summary.Completed).
			Int("failed", summary.Failed).
			Int("skipped", summary.Skipped).
			Dur("elapsed", time.Since(started)).
			Msg("sweep finished")
	}
	if err != nil {
		return fmt.Errorf("sweep aborted: %w", err)
	}

	// In-memory results vanish with the process; export them now.
	if dsn == "" {
		exporter := reporting.NewExporter(stores.results, stores.states)
		n, err := exporter.ExportSummary(ctx, cfg.Output.ResultsDirectory, storage.ScenarioFilter{})
		if err != nil {
			return fmt.Errorf("export summary: %w", err)
		}
		log.Info().Int("rows", n).Str("dir", cfg.Output.ResultsDirectory).Msg("summary exported")

		if cfg.Output.ExportTrajectories {
			n, err := exporter.ExportTrajectories(ctx, cfg.Output.ResultsDirectory, storage.ScenarioFilter{})
			if err != nil {
				return fmt.Errorf("export trajectories: %w", err)
			}
			log.Info().Int("files", n).Msg("trajectories exported")
		}
	}

	return nil
}

func memoryStores() *sweepStores {
	scenarios := memory.NewScenarioStore()
	return &sweepStores{
		scenarios: scenarios,
		states:    memory.NewYearlyStateStore(),
		results:   memory.NewResultStore(scenarios),
		market:    memory.NewMarketConditionsStore(),
		notes:     memory.NewNoteParameterStore(),
	}
}

func postgresStores(pool *postgres.Pool) *sweepStores {
	return &sweepStores{
		scenarios: postgres.NewScenarioStore(pool),
		states:    postgres.NewYearlyStateStore(pool),
		results:   postgres.NewResultStore(pool),
		market:    postgres.NewMarketConditionsStore(pool),
		notes:     postgres.NewNoteParameterStore(pool),
	}
}

// loadInputs resolves the market history and note participation table. With a
// database the tables written by setup-database are authoritative; without
// one everything is loaded and derived from the configured CSVs.
func loadInputs(cmd *cobra.Command, cfg *config.Config, stores *sweepStores, fromDB bool) (*marketdata.Store, *marketdata.NoteTable, error) {
	if fromDB {
		recordPtrs, err := stores.market.GetAll(cmd.Context())
		if err != nil {
			return nil, nil, fmt.Errorf("load market conditions: %w", err)
		}
		if len(recordPtrs) == 0 {
			return nil, nil, errors.New("market_conditions is empty: run setup-database first")
		}
		paramPtrs, err := stores.notes.GetAll(cmd.Context())
		if err != nil {
			return nil, nil, fmt.Errorf("load note parameters: %w", err)
		}

		records := make([]domain.YearlyMarketRecord, len(recordPtrs))
		for i, r := range recordPtrs {
			records[i] = *r
		}
		params := make([]domain.NoteParameters, len(paramPtrs))
		for i, p := range paramPtrs {
			params[i] = *p
		}
		return marketdata.NewStore(records), marketdata.NewNoteTable(params), nil
	}

	records, err := marketdata.LoadMarketCSV(cfg.Market.CSVPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load market data: %w", err)
	}
	params, err := noteTableFromConfig(cfg, records)
	if err != nil {
		return nil, nil, err
	}
	return marketdata.NewStore(records), marketdata.NewNoteTable(params), nil
}
