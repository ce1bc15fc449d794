package metrics

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "network_error", Outcome(common.NewError(common.ErrNetwork, "x", nil)))
	assert.Equal(t, "invalid_credentials", Outcome(common.NewError(common.ErrInvalidCredentials, "", nil)))
	assert.Equal(t, "unknown_error", Outcome(errors.New("plain")))
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSessionRequest("create_session", nil)
	m.ObserveSessionRequest("create_session", common.NewError(common.ErrNetwork, "", nil))
	m.ObserveSessionRequest("create_session", common.NewError(common.ErrNetwork, "", nil))
	m.ObserveRetry("create_session")
	m.ObserveFlush(nil, 2)
	m.ObserveFlush(errors.New("disk full"), 5)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionRequests.WithLabelValues("create_session", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionRequests.WithLabelValues("create_session", "network_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionRetries.WithLabelValues("create_session")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreFlushes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreFlushes.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Accounts))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSessionRequest("x", nil)
	m.ObserveRetry("x")
	m.ObserveFlush(nil, 1)
}
