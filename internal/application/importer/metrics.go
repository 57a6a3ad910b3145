package importer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

var (
	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "household_import",
		Subsystem: "rows",
		Name:      "processed_total",
		Help:      "Import rows processed, broken down by outcome.",
	}, []string{"outcome"})

	importRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "household_import",
		Subsystem: "runs",
		Name:      "finished_total",
		Help:      "Import runs finished, broken down by final status.",
	}, []string{"status"})

	importRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "household_import",
		Subsystem: "runs",
		Name:      "duration_seconds",
		Help:      "Wall time of import runs.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
	})

	activeRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "household_import",
		Subsystem: "runs",
		Name:      "active",
		Help:      "Import runs currently executing.",
	})
)

func recordRowMetric(kind OutcomeKind) {
	importRows.WithLabelValues(string(kind)).Inc()
}

func recordRunMetric(status domain.ProgressStatus, elapsed time.Duration) {
	importRuns.WithLabelValues(string(status)).Inc()
	importRunDuration.Observe(elapsed.Seconds())
}
