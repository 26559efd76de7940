package observability

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wshinigamic/wtg-backend/internal/platform/envutil"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

// Metrics holds the service collectors. All methods are nil-safe so callers
// can run with metrics disabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	deltaCalls   *prometheus.CounterVec
	deltaLatency *prometheus.HistogramVec
	breakerState *prometheus.GaugeVec

	scoreRowsUpdated *prometheus.CounterVec
	scoreUpdates     *prometheus.CounterVec

	feedRequests *prometheus.CounterVec
	feedSize     prometheus.Histogram

	idempotencyHits *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled(log *logger.Logger) bool {
	return envutil.Bool("METRICS_ENABLED", true, log)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once, or returns nil when disabled.
func Init(log *logger.Logger) *Metrics {
	if !Enabled(log) {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

// NewMetrics registers a fresh collector set on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wtg_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wtg_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "wtg_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		deltaCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wtg_scoring_delta_calls_total",
			Help: "Calls to the external delta service by outcome.",
		}, []string{"outcome"}),
		deltaLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wtg_scoring_delta_duration_seconds",
			Help:    "Latency of delta service calls in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		breakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wtg_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),
		scoreRowsUpdated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wtg_score_rows_updated_total",
			Help: "Score rows written by the score update engine.",
		}, []string{"kind"}),
		scoreUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wtg_score_updates_total",
			Help: "Score update batches by outcome.",
		}, []string{"outcome"}),
		feedRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wtg_feed_requests_total",
			Help: "Feed sampling requests by outcome.",
		}, []string{"outcome"}),
		feedSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wtg_feed_result_size",
			Help:    "Number of products returned per sampled feed.",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		}),
		idempotencyHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wtg_idempotency_keys_total",
			Help: "Idempotency key checks by result.",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveDeltaCall(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	outcome = strings.TrimSpace(outcome)
	if outcome == "" {
		outcome = "unknown"
	}
	m.deltaCalls.WithLabelValues(outcome).Inc()
	m.deltaLatency.WithLabelValues(outcome).Observe(dur.Seconds())
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(state)
}

func (m *Metrics) ObserveScoreUpdate(outcome string, colorRows, productRows int) {
	if m == nil {
		return
	}
	m.scoreUpdates.WithLabelValues(outcome).Inc()
	if colorRows > 0 {
		m.scoreRowsUpdated.WithLabelValues("color").Add(float64(colorRows))
	}
	if productRows > 0 {
		m.scoreRowsUpdated.WithLabelValues("product").Add(float64(productRows))
	}
}

func (m *Metrics) ObserveFeed(outcome string, size int) {
	if m == nil {
		return
	}
	m.feedRequests.WithLabelValues(outcome).Inc()
	m.feedSize.Observe(float64(size))
}

func (m *Metrics) IncIdempotency(result string) {
	if m == nil {
		return
	}
	m.idempotencyHits.WithLabelValues(result).Inc()
}

// StatusLabel renders an HTTP status for metric labels.
func StatusLabel(status int) string {
	return strconv.Itoa(status)
}
