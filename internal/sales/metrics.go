package sales

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Committed prometheus.Counter
	Revenue   prometheus.Counter
	Rejected  *prometheus.CounterVec
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Committed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_committed_total",
			Help: "Sales fully committed (stock decremented and ledger appended)",
		}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_revenue_total",
			Help: "Revenue from committed sales",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_sales_rejected_total",
			Help: "Commit attempts rejected, by reason",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.Committed, m.Revenue, m.Rejected)
	return m
}

func (m *Metrics) reject(reason string) {
	if m != nil {
		m.Rejected.WithLabelValues(reason).Inc()
	}
}
