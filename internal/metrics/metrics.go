package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slaq",
			Name:      "evaluations_total",
			Help:      "Total signal evaluations performed, partitioned by signal and data quality.",
		},
		[]string{"signal", "quality"},
	)

	badVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slaq",
			Name:      "bad_verdicts_total",
			Help:      "Evaluations whose SLI fell below the SLO target.",
		},
		[]string{"signal"},
	)

	fetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slaq",
			Name:      "fetch_failures_total",
			Help:      "Evaluations degraded by a metrics backend failure.",
		},
		[]string{"signal"},
	)

	writeFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slaq",
			Name:      "write_failures_total",
			Help:      "Indicator records dropped because the storage append failed.",
		},
	)

	iterationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "slaq",
			Name:      "iteration_seconds",
			Help:      "Full evaluation iteration latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
)

// Register attaches slaq collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		evaluationsTotal,
		badVerdictsTotal,
		fetchFailuresTotal,
		writeFailuresTotal,
		iterationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveEvaluation records the outcome of one signal evaluation.
func ObserveEvaluation(signal, quality string, isBad bool) {
	evaluationsTotal.WithLabelValues(signal, quality).Inc()
	if isBad {
		badVerdictsTotal.WithLabelValues(signal).Inc()
	}
}

// ObserveFetchFailure records an evaluation degraded by backend failure.
func ObserveFetchFailure(signal string) {
	fetchFailuresTotal.WithLabelValues(signal).Inc()
}

// ObserveWriteFailure records a dropped indicator record.
func ObserveWriteFailure() {
	writeFailuresTotal.Inc()
}

// ObserveIteration records a full iteration duration.
func ObserveIteration(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	iterationSeconds.Observe(duration.Seconds())
}
