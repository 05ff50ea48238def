package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records reconciliation operations and dispatch outcomes.
type LedgerMetrics struct {
	operations    *prometheus.CounterVec
	splitDuration prometheus.Histogram
	dispatch      *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Reconciliation operations by type and outcome.",
	}, []string{"operation", "outcome"})
	splitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_split_duration_seconds",
		Help:    "Duration of share re-splits in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	dispatch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_dispatch_total",
		Help: "Payment-request message dispatch results.",
	}, []string{"outcome"})
	reg.MustRegister(operations, splitDuration, dispatch)
	return &LedgerMetrics{
		operations:    operations,
		splitDuration: splitDuration,
		dispatch:      dispatch,
	}
}

// IncOperation counts one reconciliation operation.
func (m *LedgerMetrics) IncOperation(operation string, err error) {
	if m == nil || m.operations == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

// ObserveSplit records the duration of one re-split.
func (m *LedgerMetrics) ObserveSplit(duration time.Duration) {
	if m == nil || m.splitDuration == nil {
		return
	}
	m.splitDuration.Observe(duration.Seconds())
}

// AddDispatchResults counts sent/failed message deliveries.
func (m *LedgerMetrics) AddDispatchResults(sent, failed int) {
	if m == nil || m.dispatch == nil {
		return
	}
	m.dispatch.WithLabelValues("sent").Add(float64(sent))
	m.dispatch.WithLabelValues("failed").Add(float64(failed))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
