package sli

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Label names cannot be escaped in PromQL, only validated.
var labelNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// BuildQueries produces the total-count and success-count PromQL expressions
// for a signal over the given window (e.g. "30m"). Pure and deterministic:
// the same definition and window always yield the same pair of expressions.
func BuildQueries(def *Definition, window string) (total, success string) {
	total = buildSumQuery(def.Spec.Total, window)
	success = buildSumQuery(def.Spec.Success, window)
	return total, success
}

// buildSumQuery assembles sum(increase(metric{matchers}[window])) for a selector.
// Label values go through escapeLabelValue rather than raw interpolation.
func buildSumQuery(sel Selector, window string) string {
	var matchers []string

	if sel.Group != "" {
		matchers = append(matchers, `group="`+escapeLabelValue(sel.Group)+`"`)
	}
	if sel.System != "" {
		matchers = append(matchers, `system="`+escapeLabelValue(sel.System)+`"`)
	}

	// Extra matchers in sorted order so the expression is stable. Names that
	// cannot appear in a PromQL matcher are dropped here; the validator
	// rejects them long before the daemon gets this far.
	keys := make([]string, 0, len(sel.Labels))
	for k := range sel.Labels {
		if labelNamePattern.MatchString(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		matchers = append(matchers, k+`="`+escapeLabelValue(sel.Labels[k])+`"`)
	}

	selector := sel.Metric
	if len(matchers) > 0 {
		selector = fmt.Sprintf("%s{%s}", sel.Metric, strings.Join(matchers, ","))
	}

	return fmt.Sprintf("sum(increase(%s[%s]))", selector, window)
}

// escapeLabelValue escapes a label value per PromQL double-quoted string
// literal rules: backslash, double quote and newline.
func escapeLabelValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	return v
}
