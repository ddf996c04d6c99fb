package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	collector, err := NewCollector(reg)
	require.NoError(t, err)

	collector.ObserveSearch("cost", "ok", 120*time.Millisecond)
	collector.ObserveSearch("cost", "ok", 80*time.Millisecond)
	collector.ObserveSearch("fairness", "partial", 900*time.Millisecond)
	collector.ObserveEvaluation(true)
	collector.ObserveEvaluation(false)
	collector.SetReservePool(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.Searches.WithLabelValues("cost", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Searches.WithLabelValues("fairness", "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Evaluations.WithLabelValues("legal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Evaluations.WithLabelValues("illegal")))
	assert.Equal(t, 7.0, testutil.ToFloat64(collector.ReservePool))
}

func TestNewCollector_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewCollector(reg)
	require.NoError(t, err)
	first.ObserveEvaluation(true)

	second, err := NewCollector(reg)
	require.NoError(t, err)
	second.ObserveEvaluation(true)

	// Both collectors share the registered series.
	assert.Equal(t, 2.0, testutil.ToFloat64(second.Evaluations.WithLabelValues("legal")))
}

func TestCollector_NilIsSafe(t *testing.T) {
	var collector *Collector
	collector.ObserveSearch("cost", "ok", time.Millisecond)
	collector.ObserveEvaluation(false)
	collector.SetReservePool(3)
}
