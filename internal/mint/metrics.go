package mint

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mantono/flakeid/pkg/flake"
)

// Metrics are the Prometheus collectors of a Service.
type Metrics struct {
	minted   prometheus.Counter
	failures *prometheus.CounterVec
	waits    prometheus.Counter
	batch    prometheus.Histogram
}

// NewMetrics registers the Service collectors with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		minted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flakeid",
			Subsystem: "mint",
			Name:      "ids_total",
			Help:      "Total number of identifiers generated",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flakeid",
			Subsystem: "mint",
			Name:      "errors_total",
			Help:      "Total number of failed generation attempts",
		}, []string{"kind"}),
		waits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flakeid",
			Subsystem: "mint",
			Name:      "exhaustion_waits_total",
			Help:      "Number of times generation waited for the next millisecond",
		}),
		batch: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flakeid",
			Subsystem: "mint",
			Name:      "batch_size",
			Help:      "Number of identifiers requested per call",
			Buckets:   []float64{1, 10, 100, 1000},
		}),
	}
}

func (m *Metrics) failure(err error) {
	m.failures.WithLabelValues(errorKind(err)).Inc()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, flake.ErrExhausted):
		return "exhausted"
	case errors.Is(err, flake.ErrTimeDrift):
		return "time_drift"
	default:
		return "other"
	}
}
