package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/probeworks/slaq/internal/eval"
	"github.com/probeworks/slaq/internal/metrics"
	"github.com/probeworks/slaq/internal/sli"
	"github.com/probeworks/slaq/internal/storage"
)

// Runner drives the evaluation loop: compute the window, evaluate every
// configured signal, persist the outcomes, sleep, repeat. It stops cleanly
// when its context is cancelled, letting the in-flight iteration drain.
type Runner struct {
	defs           []sli.DefinitionWithFile
	evaluator      *eval.Evaluator
	store          storage.IndicatorStore
	cache          *OutcomeCache
	logger         *slog.Logger
	scrapeInterval time.Duration
	windowLength   time.Duration
	maxConcurrency int
}

// Options configures a Runner.
type Options struct {
	ScrapeInterval time.Duration
	WindowLength   time.Duration
	// MaxConcurrency bounds how many signals evaluate at once within one
	// iteration. 1 means strictly sequential.
	MaxConcurrency int
}

// New creates a runner over the given signal definitions.
func New(defs []sli.DefinitionWithFile, evaluator *eval.Evaluator, store storage.IndicatorStore, logger *slog.Logger, opts Options) *Runner {
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Runner{
		defs:           defs,
		evaluator:      evaluator,
		store:          store,
		cache:          NewOutcomeCache(),
		logger:         logger,
		scrapeInterval: opts.ScrapeInterval,
		windowLength:   opts.WindowLength,
		maxConcurrency: maxConcurrency,
	}
}

// Cache returns the latest-outcome cache
func (r *Runner) Cache() *OutcomeCache {
	return r.cache
}

// Definitions returns the signal definitions the runner evaluates
func (r *Runner) Definitions() []sli.DefinitionWithFile {
	defs := make([]sli.DefinitionWithFile, len(r.defs))
	copy(defs, r.defs)
	return defs
}

// Run executes the evaluation loop until ctx is cancelled. Cancellation is
// cooperative: it is checked between iterations, and an iteration already
// underway finishes its signals before Run returns. Run only returns a
// non-nil error for unexpected internal failures; per-signal trouble is
// contained inside the iteration.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.defs) == 0 {
		return fmt.Errorf("no signal definitions to evaluate")
	}

	r.logger.Info("evaluation loop starting",
		slog.Int("signals", len(r.defs)),
		slog.Duration("scrape_interval", r.scrapeInterval),
		slog.Duration("window_length", r.windowLength))

	ticker := time.NewTicker(r.scrapeInterval)
	defer ticker.Stop()

	// Cancellation is honored at the top of every iteration, the immediate
	// first one included
	select {
	case <-ctx.Done():
		r.logger.Info("evaluation loop draining")
		return nil
	default:
	}

	// First iteration runs immediately rather than one interval in
	r.iterate(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("evaluation loop draining")
			return nil
		case <-ticker.C:
			r.iterate(ctx)
		}
	}
}

// iterate evaluates every signal once over the current rolling window.
// Signals are independent: one signal's failure never starves the others.
func (r *Runner) iterate(ctx context.Context) {
	started := time.Now()
	window := eval.NewWindow(started, r.windowLength)

	// Signals already started get to finish during drain; the querier's own
	// timeout bounds how long that can take.
	ctx = context.WithoutCancel(ctx)

	g := new(errgroup.Group)
	g.SetLimit(r.maxConcurrency)

	for _, defWithFile := range r.defs {
		def := defWithFile.Definition
		g.Go(func() error {
			r.evaluateSignal(ctx, def, window)
			return nil
		})
	}

	// Goroutines never return errors; Wait is just the iteration barrier
	_ = g.Wait()

	metrics.ObserveIteration(time.Since(started))
	r.logger.Debug("iteration complete",
		slog.Duration("elapsed", time.Since(started)),
		slog.Time("window_start", window.Start),
		slog.Time("window_end", window.End))
}

// evaluateSignal measures one signal and persists the outcome. Recovers
// panics so a defective signal cannot take the loop down.
func (r *Runner) evaluateSignal(ctx context.Context, def *sli.Definition, window eval.Window) {
	name := def.Metadata.Name

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("signal evaluation panicked",
				slog.String("signal", name),
				slog.Any("panic", rec))
		}
	}()

	outcome := r.evaluator.Evaluate(ctx, def, window)

	if outcome.Quality == eval.QualityError {
		metrics.ObserveFetchFailure(name)
	}
	metrics.ObserveEvaluation(name, outcome.Quality, outcome.IsBad)

	record := storage.IndicatorRecord{
		Timestamp:   outcome.Timestamp,
		Name:        outcome.Name,
		SLOTarget:   def.Spec.SLOTargetPercent,
		SLIValue:    outcome.SLIValue,
		IsBad:       outcome.IsBad,
		Period:      sli.FormatDuration(r.windowLength),
		DataQuality: outcome.Quality,
	}

	// Best-effort persistence: a failed write drops this record and moves on
	if err := r.store.Append(ctx, record); err != nil {
		metrics.ObserveWriteFailure()
		r.logger.Error("failed to append indicator record",
			slog.String("signal", name),
			slog.Any("error", err))
	}

	r.cache.Set(name, outcome)

	r.logger.Info("signal evaluated",
		slog.String("signal", name),
		slog.Float64("sli", outcome.SLIValue),
		slog.Float64("slo_target", def.Spec.SLOTargetPercent),
		slog.Bool("is_bad", outcome.IsBad),
		slog.String("quality", outcome.Quality))
}
