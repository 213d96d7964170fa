package serve

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type metrics struct {
	responses          *prometheus.CounterVec
	concurrentRequests prometheus.Gauge
}

// newMetrics registers (or reuses) the server metrics on reg.
//
// filesend_http_responses_total{code="XXX"} counts every response, including 403/404 resolve outcomes and 429s.
// filesend_http_concurrent_requests is the number of requests in flight.
func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		responses: registerOrGetMetric(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "filesend",
					Subsystem: "http",
					Name:      "responses_total",
					Help:      "Total number of HTTP responses sent, labeled by status code.",
				},
				[]string{"code"},
			),
			"responses_total",
			reg,
		).(*prometheus.CounterVec),
		concurrentRequests: registerOrGetMetric(
			prometheus.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "filesend",
					Subsystem: "http",
					Name:      "concurrent_requests",
					Help:      "Number of HTTP requests currently being processed.",
				},
			),
			"concurrent_requests",
			reg,
		).(prometheus.Gauge),
	}
}

func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.concurrentRequests.Inc()
		defer m.concurrentRequests.Dec()

		mrw := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // if WriteHeader is never called
		}
		next.ServeHTTP(mrw, r)

		m.responses.With(prometheus.Labels{"code": strconv.Itoa(mrw.statusCode)}).Inc()
	})
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *metricsResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap allows http.ResponseController to reach the underlying writer.
func (w *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// registerOrGetMetric registers a metric, returning the existing collector if it was already registered.
func registerOrGetMetric(metric prometheus.Collector, name string, reg prometheus.Registerer) prometheus.Collector {
	if err := reg.Register(metric); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		log.Error().Err(err).Str("metric", name).Msg("failed to register metric")
	}
	return metric
}
