package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorefrontMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.IncCartOperation("add", ResultSuccess)
	m.IncCartOperation("add", ResultSuccess)
	m.IncCartOperation("update", "")
	m.IncCheckout(ResultUnpersisted)
	m.AddSkippedItems(2)
	m.AddSkippedItems(-1)
	m.IncReviewSubmission(ResultRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartOps.WithLabelValues("add", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartOps.WithLabelValues("update", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkoutOrders.WithLabelValues(ResultUnpersisted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkoutSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviewSubmits.WithLabelValues(ResultRejected)))
}

func TestStorefrontMetricsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)
	m.ObserveCheckout(250 * time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	sum, err := fetchHistogramSum(mfs, "storefront_checkout_duration_seconds")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, sum, 0.0001)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *StorefrontMetrics
	assert.NotPanics(t, func() {
		m.IncCartOperation("add", ResultSuccess)
		m.IncCheckout(ResultSuccess)
		m.AddSkippedItems(1)
		m.ObserveCheckout(time.Second)
		m.IncReviewSubmission(ResultSuccess)
	})
	unregistered := NewStorefrontMetrics(nil)
	assert.NotPanics(t, func() { unregistered.IncCheckout(ResultError) })
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if h := metric.GetHistogram(); h != nil {
				return h.GetSampleSum(), nil
			}
		}
	}
	return 0, fmt.Errorf("histogram %q not found", name)
}
