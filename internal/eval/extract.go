package eval

import (
	"log/slog"
	"strconv"
)

// Extract pulls the named numeric field out of the first row of a result
// set. Any malformed or missing case degrades to 0 with a warning, never an
// error: an absent number and a zero count are deliberately the same to the
// arithmetic downstream. Only the first row is consulted; the backend is
// asked for pre-aggregated single-row sums.
func Extract(logger *slog.Logger, rows []Row, field string) float64 {
	if len(rows) == 0 {
		logger.Warn("no rows to extract from", slog.String("field", field))
		return 0
	}

	raw, ok := rows[0][field]
	if !ok {
		logger.Warn("field absent in first row", slog.String("field", field))
		return 0
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("field is not numeric",
			slog.String("field", field),
			slog.String("raw", raw))
		return 0
	}

	return value
}
