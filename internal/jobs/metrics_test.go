package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("audit:prune").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("audit:prune").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("audit:prune", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("audit:prune", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("audit:prune")))
}

func TestAddPrunedAuditLogs(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddPrunedAuditLogs(0)
	m.AddPrunedAuditLogs(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.pruned))

	var nilMetrics *Metrics
	nilMetrics.AddPrunedAuditLogs(3)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
