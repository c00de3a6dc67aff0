package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/marketdata"
	"portfolio-note-lab/internal/notes"
	"portfolio-note-lab/internal/observability"
	"portfolio-note-lab/internal/simulator"
	"portfolio-note-lab/internal/storage"
)

const (
	// DefaultScenarioTimeout bounds a single scenario run. A scenario is
	// CPU-bound and short; hitting this means something is badly wrong.
	DefaultScenarioTimeout = 2 * time.Minute

	// DefaultRetryBackoff is the pause before retrying a failed
	// persistence operation.
	DefaultRetryBackoff = 500 * time.Millisecond
)

// Orchestrator partitions scenario descriptors across a bounded worker pool
// and funnels all persistence through a single writer. Re-running the same
// grid against the same stores only computes scenarios without a completed
// result.
type Orchestrator struct {
	sim       *simulator.Simulator
	scenarios storage.ScenarioStore
	states    storage.YearlyStateStore
	results   storage.ResultStore

	workers         int
	scenarioTimeout time.Duration
	retryBackoff    time.Duration
	logger          zerolog.Logger
	metrics         *observability.Metrics
}

// Options for creating an Orchestrator.
type Options struct {
	Simulator     *simulator.Simulator
	ScenarioStore storage.ScenarioStore
	StateStore    storage.YearlyStateStore
	ResultStore   storage.ResultStore

	// Workers is the pool size; 0 means available parallelism − 1.
	Workers         int
	ScenarioTimeout time.Duration
	RetryBackoff    time.Duration
	Logger          zerolog.Logger
	Metrics         *observability.Metrics
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}
	timeout := opts.ScenarioTimeout
	if timeout <= 0 {
		timeout = DefaultScenarioTimeout
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}

	return &Orchestrator{
		sim:             opts.Simulator,
		scenarios:       opts.ScenarioStore,
		states:          opts.StateStore,
		results:         opts.ResultStore,
		workers:         workers,
		scenarioTimeout: timeout,
		retryBackoff:    backoff,
		logger:          opts.Logger,
		metrics:         metrics,
	}
}

// Summary counts the outcomes of one sweep run.
type Summary struct {
	Total     int
	Completed int
	Failed    int
	Skipped   int
}

// workItem carries one executed scenario from a worker to the aggregator.
type workItem struct {
	scenario *domain.Scenario
	outcome  *simulator.Outcome
	failure  error
}

// Run executes the sweep to completion. Scenarios already holding a
// completed result are skipped. Failed scenarios are recorded and do not
// abort the run; a persistence failure that survives its retry does, since
// results cannot be trusted without durable storage.
func (o *Orchestrator) Run(ctx context.Context, grid []*domain.Scenario) (*Summary, error) {
	start := time.Now()
	defer func() {
		o.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	o.metrics.SweepGridSize.Set(float64(len(grid)))
	summary := &Summary{Total: len(grid)}

	pending, skipped, err := o.resumeFilter(ctx, grid)
	if err != nil {
		return nil, err
	}
	summary.Skipped = skipped

	o.logger.Info().
		Int("grid_size", len(grid)).
		Int("pending", len(pending)).
		Int("skipped", skipped).
		Int("workers", o.workers).
		Msg("starting sweep")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *domain.Scenario)
	outcomes := make(chan *workItem)

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				outcomes <- o.execute(runCtx, s)
			}
		}()
	}

	// Dispatcher: stops handing out work on cancellation; in-flight
	// scenarios finish on their own (bounded by the scenario timeout).
	go func() {
		defer close(jobs)
		for _, s := range pending {
			select {
			case <-runCtx.Done():
				return
			case jobs <- s:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Single writer: every persistence call happens on this goroutine.
	var fatal error
	for item := range outcomes {
		if fatal != nil {
			// Drain remaining outcomes so workers can exit.
			continue
		}
		if err := o.persist(ctx, item, summary); err != nil {
			fatal = err
			cancel()
		}
	}
	if fatal != nil {
		return nil, fatal
	}
	if err := ctx.Err(); err != nil {
		o.logger.Warn().
			Int("completed", summary.Completed).
			Int("failed", summary.Failed).
			Msg("sweep cancelled")
		return summary, err
	}

	o.logger.Info().
		Int("completed", summary.Completed).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("sweep finished")

	return summary, nil
}

// resumeFilter drops scenarios that already hold a completed result.
func (o *Orchestrator) resumeFilter(ctx context.Context, grid []*domain.Scenario) ([]*domain.Scenario, int, error) {
	pending := make([]*domain.Scenario, 0, len(grid))
	skipped := 0
	for _, s := range grid {
		existing, err := o.getResultWithRetry(ctx, s.ScenarioID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			pending = append(pending, s)
		case err != nil:
			return nil, 0, fmt.Errorf("resume check %s: %w", s.ScenarioID, err)
		case existing.Completed:
			skipped++
			observability.RecordScenarioSkipped()
		default:
			// A prior Failed marker: run it again.
			pending = append(pending, s)
		}
	}
	return pending, skipped, nil
}

// execute runs one scenario under the per-scenario timeout. Timeouts get one
// retry; deterministic failures (missing data, valuation domain errors) are
// failed immediately.
func (o *Orchestrator) execute(ctx context.Context, s *domain.Scenario) *workItem {
	o.metrics.ActiveWorkers.Inc()
	defer o.metrics.ActiveWorkers.Dec()

	start := time.Now()
	out, err := o.runOnce(ctx, s)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		o.metrics.ScenariosRetried.Inc()
		o.logger.Warn().
			Str("scenario_id", s.ScenarioID).
			Dur("timeout", o.scenarioTimeout).
			Msg("scenario timed out, retrying once")
		out, err = o.runOnce(ctx, s)
	}
	o.metrics.ScenarioDuration.Observe(time.Since(start).Seconds())

	return &workItem{scenario: s, outcome: out, failure: err}
}

func (o *Orchestrator) runOnce(ctx context.Context, s *domain.Scenario) (*simulator.Outcome, error) {
	// Detached from the parent's cancellation: a stop signal prevents new
	// dispatch but lets in-flight scenarios finish.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.scenarioTimeout)
	defer cancel()
	return o.sim.Run(runCtx, s)
}

// persist writes one scenario's descriptor, trajectory and result. Only
// fully completed scenarios get a trajectory; failures get a Failed marker
// result so the sweep can continue and a later run can retry them.
func (o *Orchestrator) persist(ctx context.Context, item *workItem, summary *Summary) error {
	s := item.scenario

	if err := o.persistWithRetry(ctx, "upsert_scenario", func() error {
		return o.scenarios.Upsert(ctx, s)
	}); err != nil {
		return fmt.Errorf("persist scenario %s: %w", s.ScenarioID, err)
	}

	if item.failure != nil {
		summary.Failed++
		reason := classifyFailure(item.failure)
		observability.RecordScenarioFailed(reason)
		o.logger.Warn().
			Str("scenario_id", s.ScenarioID).
			Str("reason", reason).
			Err(item.failure).
			Msg("scenario failed")

		msg := item.failure.Error()
		marker := &domain.SimulationResult{
			ScenarioID:    s.ScenarioID,
			Completed:     false,
			Reason:        domain.TerminalFailed,
			FailureReason: &msg,
		}
		if err := o.persistWithRetry(ctx, "upsert_result", func() error {
			return o.results.Upsert(ctx, marker)
		}); err != nil {
			return fmt.Errorf("persist failed marker %s: %w", s.ScenarioID, err)
		}
		return nil
	}

	if err := o.persistWithRetry(ctx, "upsert_states", func() error {
		return o.states.UpsertBulk(ctx, item.outcome.Trajectory)
	}); err != nil {
		return fmt.Errorf("persist trajectory %s: %w", s.ScenarioID, err)
	}
	if err := o.persistWithRetry(ctx, "upsert_result", func() error {
		return o.results.Upsert(ctx, item.outcome.Result)
	}); err != nil {
		return fmt.Errorf("persist result %s: %w", s.ScenarioID, err)
	}

	summary.Completed++
	observability.RecordScenarioCompleted()
	o.metrics.YearsSimulated.Add(float64(len(item.outcome.Trajectory)))
	if item.outcome.Result.Reason == domain.TerminalRuined {
		o.metrics.RuinsDetected.Inc()
	}
	o.logger.Debug().
		Str("scenario_id", s.ScenarioID).
		Float64("terminal_value", item.outcome.Result.TerminalValue).
		Str("reason", string(item.outcome.Result.Reason)).
		Msg("scenario persisted")

	return nil
}

// persistWithRetry runs a persistence operation, retrying once after a
// backoff. The second failure is returned to the caller and ends the sweep.
func (o *Orchestrator) persistWithRetry(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	o.metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil {
		return nil
	}

	o.metrics.DBQueryErrors.WithLabelValues(op).Inc()
	o.metrics.PersistRetries.Inc()
	o.logger.Warn().Str("op", op).Err(err).Msg("persistence failed, retrying")

	select {
	case <-time.After(o.retryBackoff):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := fn(); err != nil {
		o.metrics.DBQueryErrors.WithLabelValues(op).Inc()
		return err
	}
	return nil
}

// getResultWithRetry reads an existing result for the resume check, retrying
// once on transient errors. ErrNotFound passes through untouched.
func (o *Orchestrator) getResultWithRetry(ctx context.Context, scenarioID string) (*domain.SimulationResult, error) {
	r, err := o.results.GetByScenarioID(ctx, scenarioID)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return r, err
	}

	o.metrics.PersistRetries.Inc()
	select {
	case <-time.After(o.retryBackoff):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return o.results.GetByScenarioID(ctx, scenarioID)
}

// classifyFailure buckets a scenario failure for metrics.
func classifyFailure(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, marketdata.ErrMissingYear), errors.Is(err, marketdata.ErrMissingNoteYear):
		return "data"
	case errors.Is(err, notes.ErrInvalidTerm),
		errors.Is(err, notes.ErrInvalidVolatility),
		errors.Is(err, notes.ErrZeroCallPrice),
		errors.Is(err, notes.ErrInvalidProtection),
		errors.Is(err, notes.ErrUnknownNoteType):
		return "valuation"
	default:
		return "error"
	}
}
