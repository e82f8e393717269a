package eval

import (
	"context"
	"time"
)

// Row is one flat result row from the metrics backend, field name to value.
type Row map[string]string

// ValueField is the field carrying the sample value in backend result rows.
const ValueField = "value"

// Querier is the query-and-fetch contract the evaluator consumes.
// Implementations are fail-soft: rows is always safe to use (empty on any
// failure) and err reports transport or backend trouble for data-quality
// accounting only. A non-nil err never aborts an evaluation.
type Querier interface {
	Query(ctx context.Context, expr string, window Window, maxResults int) (rows []Row, err error)
}

// Window is the absolute [Start, End] interval an evaluation covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow computes the rolling window ending at now, in UTC.
func NewWindow(now time.Time, period time.Duration) Window {
	end := now.UTC()
	return Window{
		Start: end.Add(-period),
		End:   end,
	}
}

// Data quality of a single evaluation outcome. Distinguishes a genuine
// measurement from one degraded to defaults by missing data or backend
// failure.
const (
	QualityOK      = "ok"
	QualityMissing = "missing"
	QualityError   = "error"
)

// Outcome is the result of evaluating one signal over one window.
type Outcome struct {
	Name      string
	Window    Window
	Total     float64
	Success   float64
	SLIValue  float64
	IsBad     bool
	Quality   string
	Timestamp time.Time
}
