package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"portfolio-note-lab/internal/storage"
)

// Exporter writes persisted sweep output into a results directory.
type Exporter struct {
	results storage.ResultStore
	states  storage.YearlyStateStore
}

// NewExporter creates a new Exporter over the given stores.
func NewExporter(results storage.ResultStore, states storage.YearlyStateStore) *Exporter {
	return &Exporter{results: results, states: states}
}

// ExportSummary writes the summary CSV for all results matching the filter
// and returns the number of exported rows.
func (e *Exporter) ExportSummary(ctx context.Context, dir string, filter storage.ScenarioFilter) (int, error) {
	rows, err := e.results.Query(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("query results: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create results directory: %w", err)
	}

	path := filepath.Join(dir, "summary_results.csv")
	if err := os.WriteFile(path, []byte(RenderSummaryCSV(rows)), 0o644); err != nil {
		return 0, fmt.Errorf("write summary csv: %w", err)
	}
	return len(rows), nil
}

// ExportTrajectories writes one CSV per completed scenario under
// dir/trajectories and returns the number of exported files.
func (e *Exporter) ExportTrajectories(ctx context.Context, dir string, filter storage.ScenarioFilter) (int, error) {
	rows, err := e.results.Query(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("query results: %w", err)
	}

	trajDir := filepath.Join(dir, "trajectories")
	if err := os.MkdirAll(trajDir, 0o755); err != nil {
		return 0, fmt.Errorf("create trajectories directory: %w", err)
	}

	exported := 0
	for _, row := range rows {
		if !row.Result.Completed {
			continue
		}
		states, err := e.states.GetByScenarioID(ctx, row.Result.ScenarioID)
		if err != nil {
			return exported, fmt.Errorf("load trajectory %s: %w", row.Result.ScenarioID, err)
		}
		if len(states) == 0 {
			continue
		}

		path := filepath.Join(trajDir, row.Result.ScenarioID+".csv")
		if err := os.WriteFile(path, []byte(RenderTrajectoryCSV(states)), 0o644); err != nil {
			return exported, fmt.Errorf("write trajectory csv %s: %w", row.Result.ScenarioID, err)
		}
		exported++
	}
	return exported, nil
}
