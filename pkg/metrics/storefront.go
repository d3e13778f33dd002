package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels shared by the storefront counters.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
	// ResultUnpersisted marks a checkout whose message was returned while the
	// order row could not be written.
	ResultUnpersisted = "unpersisted"
)

// StorefrontMetrics records cart, checkout and review activity.
type StorefrontMetrics struct {
	cartOps          *prometheus.CounterVec
	checkoutOrders   *prometheus.CounterVec
	checkoutSkipped  prometheus.Counter
	checkoutDuration prometheus.Histogram
	reviewSubmits    *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart operations by operation and result.",
	}, []string{"op", "result"})
	checkoutOrders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_orders_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	checkoutSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_checkout_skipped_items_total",
		Help: "Order lines skipped because they failed to persist.",
	})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_checkout_duration_seconds",
		Help:    "Duration of WhatsApp checkout requests in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reviewSubmits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_review_submissions_total",
		Help: "Review submissions by result.",
	}, []string{"result"})
	reg.MustRegister(cartOps, checkoutOrders, checkoutSkipped, checkoutDuration, reviewSubmits)
	return &StorefrontMetrics{
		cartOps:          cartOps,
		checkoutOrders:   checkoutOrders,
		checkoutSkipped:  checkoutSkipped,
		checkoutDuration: checkoutDuration,
		reviewSubmits:    reviewSubmits,
	}
}

// IncCartOperation counts one cart operation.
func (m *StorefrontMetrics) IncCartOperation(op, result string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(op), normalizeLabel(result)).Inc()
}

// IncCheckout counts one checkout attempt.
func (m *StorefrontMetrics) IncCheckout(result string) {
	if m == nil || m.checkoutOrders == nil {
		return
	}
	m.checkoutOrders.WithLabelValues(normalizeLabel(result)).Inc()
}

// AddSkippedItems counts order lines dropped during order capture.
func (m *StorefrontMetrics) AddSkippedItems(n int) {
	if m == nil || m.checkoutSkipped == nil || n <= 0 {
		return
	}
	m.checkoutSkipped.Add(float64(n))
}

// ObserveCheckout records how long a checkout took.
func (m *StorefrontMetrics) ObserveCheckout(duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.Observe(duration.Seconds())
}

// IncReviewSubmission counts one review submission.
func (m *StorefrontMetrics) IncReviewSubmission(result string) {
	if m == nil || m.reviewSubmits == nil {
		return
	}
	m.reviewSubmits.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
