// Package metrics exposes Prometheus counters for conversions and the HTTP
// surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ssargent/gdstxt/pkg/convert"
	"github.com/ssargent/gdstxt/pkg/gds"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Conversion metrics
	recordsTotal       *prometheus.CounterVec
	recordErrorsTotal  *prometheus.CounterVec
	conversionsTotal   *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec
	bytesWrittenTotal  *prometheus.CounterVec

	// Result store metrics
	storeOperationsTotal *prometheus.CounterVec
}

var _ convert.Observer = (*Metrics)(nil)

// New creates and registers all metrics on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gdstxt_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gdstxt_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gdstxt_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gdstxt_records_total",
				Help: "Total number of records converted",
			},
			[]string{"direction", "data_type"},
		),

		recordErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gdstxt_record_errors_total",
				Help: "Total number of records that failed to convert",
			},
			[]string{"direction", "kind"},
		),

		conversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gdstxt_conversions_total",
				Help: "Total number of conversion runs",
			},
			[]string{"direction", "status"},
		),

		conversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gdstxt_conversion_duration_seconds",
				Help:    "Conversion run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction"},
		),

		bytesWrittenTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gdstxt_bytes_written_total",
				Help: "Total number of output bytes produced",
			},
			[]string{"direction"},
		),

		storeOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gdstxt_store_operations_total",
				Help: "Total number of result store operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordConverted counts one converted record
func (m *Metrics) RecordConverted(dir convert.Direction, dt gds.DataType) {
	m.recordsTotal.WithLabelValues(string(dir), dt.String()).Inc()
}

// RecordFailed counts one failed record by error kind
func (m *Metrics) RecordFailed(dir convert.Direction, err error) {
	m.recordErrorsTotal.WithLabelValues(string(dir), gds.ErrorKind(err)).Inc()
}

// ConversionFinished records the outcome of a run
func (m *Metrics) ConversionFinished(dir convert.Direction, res *convert.Result, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.conversionsTotal.WithLabelValues(string(dir), status).Inc()
	if res != nil {
		m.conversionDuration.WithLabelValues(string(dir)).Observe(res.Duration.Seconds())
		m.bytesWrittenTotal.WithLabelValues(string(dir)).Add(float64(res.BytesOut))
	}
}

// RecordStoreOperation records a result store operation
func (m *Metrics) RecordStoreOperation(operation string, success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.storeOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
