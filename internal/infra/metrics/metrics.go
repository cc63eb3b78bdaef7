package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recomputeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wasteless_recompute_runs_total",
		Help: "Bulk price recompute runs, by result.",
	}, []string{"result"})

	productsChanged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wasteless_products_changed_total",
		Help: "Products whose price or discount changed during recomputes.",
	})

	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wasteless_recompute_duration_seconds",
		Help:    "Duration of bulk price recomputes.",
		Buckets: prometheus.DefBuckets,
	})

	signagePushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wasteless_signage_pushes_total",
		Help: "Display pushes to the signage provider, by result.",
	}, []string{"result"})
)

// ObserveRun records one bulk recompute.
func ObserveRun(changed int, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	recomputeRuns.WithLabelValues(result).Inc()
	productsChanged.Add(float64(changed))
	recomputeDuration.Observe(took.Seconds())
}

// ObservePush records one signage push attempt.
func ObservePush(success bool) {
	result := "ok"
	if !success {
		result = "error"
	}
	signagePushes.WithLabelValues(result).Inc()
}
