package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every collector this service exports.
const Namespace = "backoffice"

// HTTPMetrics groups Prometheus collectors for HTTP observability.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics registers and returns HTTP metrics collectors. A nil registerer
// uses the default registry.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &HTTPMetrics{
		ReqTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"})),
		ReqDur: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"})),
		InFlight: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		})),
	}
}

// DocumentMetrics counts document lifecycle outcomes.
type DocumentMetrics struct {
	Saves              *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	Posts              *prometheus.CounterVec
	GrandTotal         *prometheus.HistogramVec
}

// NewDocumentMetrics registers and returns document collectors.
func NewDocumentMetrics(reg prometheus.Registerer) *DocumentMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &DocumentMetrics{
		Saves: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "document_saves_total",
			Help:      "Document save attempts by kind and result.",
		}, []string{"kind", "result"})),
		ValidationFailures: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "document_validation_failures_total",
			Help:      "Submissions rejected by the validation gate.",
		}, []string{"kind"})),
		Posts: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "document_posts_total",
			Help:      "Documents posted with a gapless number, by type code.",
		}, []string{"type"})),
		GrandTotal: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "document_grand_total_inr",
			Help:      "Grand total of saved documents in rupees.",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
		}, []string{"kind"})),
	}
}

// ObserveSave records one save attempt. A nil receiver is a no-op.
func (m *DocumentMetrics) ObserveSave(kind, result string, grandTotal float64) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(kind, result).Inc()
	switch result {
	case "invalid":
		m.ValidationFailures.WithLabelValues(kind).Inc()
	case "ok":
		m.GrandTotal.WithLabelValues(kind).Observe(grandTotal)
	}
}

// ObservePost records a posted document. A nil receiver is a no-op.
func (m *DocumentMetrics) ObservePost(typeCode string) {
	if m == nil {
		return
	}
	m.Posts.WithLabelValues(typeCode).Inc()
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// register adds c to reg, returning the already registered collector of the same
// description when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
	return c
}
