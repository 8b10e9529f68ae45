package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application-level instruments. Instruments register on
// the default registry so plugin metrics share the same endpoint.
type Metrics struct {
	httpRequestDuration *prometheus.HistogramVec
	recordCommits       *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	exportRows          prometheus.Counter
	lowStockMaterials   prometheus.Gauge
}

var (
	initOnce sync.Once
	shared   *Metrics
)

// New registers all instruments. Registration happens once per process.
func New() *Metrics {
	initOnce.Do(func() {
		shared = newMetrics()
	})
	return shared
}

func newMetrics() *Metrics {
	m := &Metrics{
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prodline_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		recordCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prodline_record_commits_total",
			Help: "Committed record mutations by resource and action.",
		}, []string{"resource", "action"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prodline_validation_failures_total",
			Help: "Rejected submissions by resource.",
		}, []string{"resource"}),
		exportRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prodline_export_rows_total",
			Help: "Rows written by CSV exports.",
		}),
		lowStockMaterials: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prodline_low_stock_materials",
			Help: "Materials currently below their minimum stock.",
		}),
	}

	prometheus.MustRegister(
		m.httpRequestDuration,
		m.recordCommits,
		m.validationFailures,
		m.exportRows,
		m.lowStockMaterials,
	)
	return m
}

// Handler serves the default registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCommit increments committed mutation counts.
func (m *Metrics) RecordCommit(resource, action string) {
	if m == nil {
		return
	}
	m.recordCommits.WithLabelValues(strings.TrimSpace(resource), strings.TrimSpace(action)).Inc()
}

// RecordValidationFailure increments rejected submission counts.
func (m *Metrics) RecordValidationFailure(resource string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(strings.TrimSpace(resource)).Inc()
}

// RecordExportRows adds to the exported row count.
func (m *Metrics) RecordExportRows(rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.exportRows.Add(float64(rows))
}

// SetLowStockMaterials records how many materials sit below minimum stock.
func (m *Metrics) SetLowStockMaterials(n int) {
	if m == nil {
		return
	}
	m.lowStockMaterials.Set(float64(n))
}

// GinMiddleware observes request latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
