package obs

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/corebit/backend-market/internal/pricing"
)

// HTTPMetrics groups Prometheus collectors for HTTP observability.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics registers and returns HTTP metrics collectors.
func NewHTTPMetrics(namespace string, buckets []float64, reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500}
	} else {
		sort.Float64s(buckets)
	}
	m := &HTTPMetrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   buckets,
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
	reg.MustRegister(m.ReqTotal, m.ReqDur, m.InFlight)
	return m
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

var (
	domainOnce sync.Once

	// CheckoutsTotal counts persisted checkout snapshots.
	CheckoutsTotal prometheus.Counter
	// CheckoutRetipTotal counts checkouts that carried at least one retip line.
	CheckoutRetipTotal prometheus.Counter
	// TimelineRefreshTotal counts background timeline cache rebuilds by outcome.
	TimelineRefreshTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Number of orders created through checkout.",
		})
		CheckoutRetipTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_retip_total",
			Help:      "Number of checkouts including a retip service fee.",
		})
		TimelineRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_timeline_refresh_total",
			Help:      "Background stock timeline refreshes by outcome.",
		}, []string{"result"})
		reg.MustRegister(CheckoutsTotal, CheckoutRetipTotal, TimelineRefreshTotal)
	})
}

// ObserveCheckout records a completed checkout. Safe to call before metrics
// registration; it becomes a no-op.
func ObserveCheckout(totals pricing.Totals) {
	if CheckoutsTotal == nil {
		return
	}
	CheckoutsTotal.Inc()
	if totals.RetipTotal > 0 && CheckoutRetipTotal != nil {
		CheckoutRetipTotal.Inc()
	}
}

// ObserveTimelineRefresh records a background refresh outcome.
func ObserveTimelineRefresh(result string) {
	if TimelineRefreshTotal == nil {
		return
	}
	TimelineRefreshTotal.WithLabelValues(result).Inc()
}
