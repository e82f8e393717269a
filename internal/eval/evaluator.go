package eval

import (
	"context"
	"log/slog"

	"github.com/probeworks/slaq/internal/sli"
)

// Evaluator drives a single signal through query construction, fetch,
// extraction and the ratio/verdict arithmetic.
type Evaluator struct {
	querier    Querier
	logger     *slog.Logger
	maxResults int
}

// NewEvaluator creates an evaluator backed by the given querier.
func NewEvaluator(querier Querier, logger *slog.Logger, maxResults int) *Evaluator {
	if maxResults < 1 {
		maxResults = 1
	}
	return &Evaluator{
		querier:    querier,
		logger:     logger,
		maxResults: maxResults,
	}
}

// Evaluate measures one signal over one window. It never fails: fetch or
// extraction trouble degrades the counts to 0 and is reflected in the
// outcome's Quality field.
func (e *Evaluator) Evaluate(ctx context.Context, def *sli.Definition, window Window) Outcome {
	name := def.Metadata.Name
	logger := e.logger.With(slog.String("signal", name))

	windowText := sli.FormatDuration(window.End.Sub(window.Start))
	totalExpr, successExpr := sli.BuildQueries(def, windowText)

	totalRows, totalErr := e.querier.Query(ctx, totalExpr, window, e.maxResults)
	successRows, successErr := e.querier.Query(ctx, successExpr, window, e.maxResults)

	total := Extract(logger, totalRows, ValueField)
	success := Extract(logger, successRows, ValueField)

	quality := QualityOK
	switch {
	case totalErr != nil || successErr != nil:
		quality = QualityError
	case len(totalRows) == 0 || len(successRows) == 0:
		quality = QualityMissing
	}

	// Verdict is taken on the rounded value so the persisted record and the
	// is_bad flag always agree.
	percentage := Round3(Ratio(total, success))
	target := def.Spec.SLOTargetPercent

	return Outcome{
		Name:      name,
		Window:    window,
		Total:     total,
		Success:   success,
		SLIValue:  percentage,
		IsBad:     Verdict(percentage, target),
		Quality:   quality,
		Timestamp: window.End,
	}
}
