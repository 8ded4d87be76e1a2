package metrics

import "github.com/prometheus/client_golang/prometheus"

// RemittanceMetrics exposes the reconciliation backlog.
type RemittanceMetrics struct {
	pending prometheus.Gauge
	resumed prometheus.Counter
}

// NewRemittanceMetrics registers remittance gauges on the provided registerer.
func NewRemittanceMetrics(reg prometheus.Registerer) *RemittanceMetrics {
	if reg == nil {
		return &RemittanceMetrics{}
	}
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "remittances_pending",
		Help: "Remittances waiting for their treasury credit leg.",
	})
	resumed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "remittances_resumed_total",
		Help: "Pending remittances completed by the reconciler.",
	})
	reg.MustRegister(pending, resumed)
	return &RemittanceMetrics{pending: pending, resumed: resumed}
}

// SetPending records the current pending backlog size.
func (m *RemittanceMetrics) SetPending(n int) {
	if m == nil || m.pending == nil {
		return
	}
	m.pending.Set(float64(n))
}

// IncResumed counts a successful resume.
func (m *RemittanceMetrics) IncResumed() {
	if m == nil || m.resumed == nil {
		return
	}
	m.resumed.Inc()
}
