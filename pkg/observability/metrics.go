package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Upgrade workflow metrics
	WorkflowTransitionsTotal *prometheus.CounterVec
	CheckoutRedirectsTotal   prometheus.Counter

	// Payment proof metrics
	ProofUploadsTotal   *prometheus.CounterVec
	ProofUploadDuration prometheus.Histogram
	ProofUploadBytes    prometheus.Histogram

	// Subscription request metrics
	SubmissionsTotal *prometheus.CounterVec

	// Quota metrics
	QuotaEvaluationsTotal *prometheus.CounterVec

	// Store API metrics
	StoreAPIRequestsTotal   *prometheus.CounterVec
	StoreAPIRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storedash_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storedash_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storedash_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),

		WorkflowTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storedash_upgrade_transitions_total",
				Help: "Upgrade workflow state transitions",
			},
			[]string{"from", "to"},
		),
		CheckoutRedirectsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "storedash_checkout_redirects_total",
				Help: "Checkout loads redirected back to plan selection for lack of an intent",
			},
		),

		ProofUploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storedash_proof_uploads_total",
				Help: "Payment proof uploads by result",
			},
			[]string{"result"},
		),
		ProofUploadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "storedash_proof_upload_duration_seconds",
				Help:    "Payment proof upload duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ProofUploadBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "storedash_proof_upload_bytes",
				Help:    "Payment proof image size in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),

		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storedash_subscription_submissions_total",
				Help: "Subscription request submissions by plan and result",
			},
			[]string{"plan", "result"},
		),

		QuotaEvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storedash_quota_evaluations_total",
				Help: "Quota evaluations by outcome",
			},
			[]string{"outcome"},
		),

		StoreAPIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storedash_store_api_requests_total",
				Help: "Requests made to the upstream store API",
			},
			[]string{"endpoint", "status"},
		),
		StoreAPIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storedash_store_api_request_duration_seconds",
				Help:    "Upstream store API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.WorkflowTransitionsTotal,
		m.CheckoutRedirectsTotal,
		m.ProofUploadsTotal,
		m.ProofUploadDuration,
		m.ProofUploadBytes,
		m.SubmissionsTotal,
		m.QuotaEvaluationsTotal,
		m.StoreAPIRequestsTotal,
		m.StoreAPIRequestDuration,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Requests are labelled by route template so merchant IDs do not explode cardinality.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			route := routeTemplate(r)
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(rw.bytesWritten))
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
