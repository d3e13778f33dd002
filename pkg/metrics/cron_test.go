package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCronJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncRun("stale-carts", ResultSuccess)
	m.IncRun("stale-carts", ResultError)
	m.IncRun("", ResultSuccess)
	m.ObserveDuration("stale-carts", 40*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("stale-carts", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("stale-carts", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("unknown", ResultSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration, "storefront_job_duration_seconds"))
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.IncRun("stale-carts", ResultSuccess)
	m.ObserveDuration("stale-carts", time.Second)

	m = NewCronJobMetrics(nil)
	m.IncRun("stale-carts", ResultSuccess)
}
