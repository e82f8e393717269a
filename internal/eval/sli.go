package eval

import "math"

// Ratio computes the SLI percentage from total and success counts.
// Zero total events means 100%: nothing happened, nothing failed. No
// clamping above 100 — success exceeding total is malformed upstream data
// and the caller is expected to tolerate the resulting >100 value.
func Ratio(total, success float64) float64 {
	if total == 0 {
		return 100.0
	}
	return success / total * 100
}

// Verdict reports whether a percentage misses the SLO target. The boundary
// is passing: exactly hitting the target is not bad.
func Verdict(percentage, sloTarget float64) bool {
	return percentage < sloTarget
}

// Round3 rounds to the fixed-point precision persisted records carry.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
