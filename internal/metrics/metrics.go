// Package metrics provides Prometheus counters for the session client and the
// credential store. All methods are safe to call on a nil *Metrics.
package metrics

import (
	"strings"

	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "skykeeper"

// Metrics groups the collectors registered on a single registry.
type Metrics struct {
	// SessionRequests counts session endpoint attempts by operation and outcome.
	SessionRequests *prometheus.CounterVec

	// SessionRetries counts backoff waits by operation.
	SessionRetries *prometheus.CounterVec

	// StoreFlushes counts whole-snapshot writes by result.
	StoreFlushes *prometheus.CounterVec

	// Accounts tracks the number of stored accounts.
	Accounts prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_requests_total",
				Help:      "Session endpoint attempts by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		SessionRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_retries_total",
				Help:      "Retries after transient network failures",
			},
			[]string{"operation"},
		),
		StoreFlushes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_flushes_total",
				Help:      "Encrypted snapshot writes by result",
			},
			[]string{"result"},
		),
		Accounts: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "accounts",
				Help:      "Number of stored accounts",
			},
		),
	}
}

// Outcome maps err to a low-cardinality label value.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ReplaceAll(common.KindOf(err).Error(), " ", "_")
}

func (m *Metrics) ObserveSessionRequest(operation string, err error) {
	if m == nil {
		return
	}
	m.SessionRequests.WithLabelValues(operation, Outcome(err)).Inc()
}

func (m *Metrics) ObserveRetry(operation string) {
	if m == nil {
		return
	}
	m.SessionRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveFlush(err error, accounts int) {
	if m == nil {
		return
	}
	if err != nil {
		m.StoreFlushes.WithLabelValues("error").Inc()
		return
	}
	m.StoreFlushes.WithLabelValues("ok").Inc()
	m.Accounts.Set(float64(accounts))
}
