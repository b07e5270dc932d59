package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDocumentMetrics_ObserveSave(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDocumentMetrics(reg)

	m.ObserveSave("GRN", "ok", 472)
	m.ObserveSave("GRN", "invalid", 0)
	m.ObserveSave("GRN", "invalid", 0)
	m.ObservePost("GR")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues("GRN", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("GRN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Posts.WithLabelValues("GR")))
}

func TestRegister_ReusesExistingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewHTTPMetrics(reg)
	second := NewHTTPMetrics(reg)

	first.ReqTotal.WithLabelValues("GET", "/api/health", "200").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.ReqTotal.WithLabelValues("GET", "/api/health", "200")))
}

func TestNilDocumentMetrics(t *testing.T) {
	var m *DocumentMetrics
	assert.NotPanics(t, func() {
		m.ObserveSave("BOM", "ok", 1)
		m.ObservePost("BM")
	})
}
