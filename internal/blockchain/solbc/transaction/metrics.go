// internal/blockchain/solbc/transaction/metrics.go
package transaction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	attempts     *prometheus.CounterVec
	submissions  *prometheus.CounterVec
	confirmation prometheus.Histogram
}

// NewMetrics создает метрики и регистрирует их в reg. nil reg - без регистрации.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solana_tx_attempts_total",
			Help: "Submission attempts by outcome",
		}, []string{"outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solana_tx_submissions_total",
			Help: "Finished submissions by result",
		}, []string{"result"}),
		confirmation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solana_tx_confirmation_seconds",
			Help:    "Time from first attempt to confirmation",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 9),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.submissions, m.confirmation)
	}
	return m
}

func (m *Metrics) observeAttempt(status Status) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) observeResult(result *Result, start time.Time) {
	if m == nil {
		return
	}
	if result.Confirmed() {
		m.submissions.WithLabelValues("confirmed").Inc()
		m.confirmation.Observe(time.Since(start).Seconds())
		return
	}
	m.submissions.WithLabelValues("failed").Inc()
}
