package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, duration time.Duration)
	IncChatAttempt(version, outcome string)
	IncCacheHits()
	IncCacheMisses()
	IncSheetFallbacks(op string)
	// Handler serves the exposition format, or 404 when metrics are off.
	Handler() http.Handler
}

type Prometheus struct {
	gatherer        prometheus.Gatherer
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	chatAttempts    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	sheetFallbacks  *prometheus.CounterVec
}

// New registers the collectors on reg. Passing enabled=false returns a
// recorder that drops everything.
func New(enabled bool, reg *prometheus.Registry) Recorder {
	if !enabled {
		return Noop{}
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)

	return &Prometheus{
		gatherer: reg,
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "site_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "site_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		chatAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_upstream_attempts_total",
			Help: "Generative API calls by version and outcome",
		}, []string{"version", "outcome"}),

		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "content_cache_hits_total",
			Help: "Total number of content cache hits",
		}),

		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "content_cache_misses_total",
			Help: "Total number of content cache misses",
		}),

		sheetFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sheets_fallback_total",
			Help: "Spreadsheet calls answered in fallback mode",
		}, []string{"op"}),
	}
}

func (m *Prometheus) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, httpStatusBucket(status)).Inc()
}

func (m *Prometheus) ObserveRequestDuration(route string, duration time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Prometheus) IncChatAttempt(version, outcome string) {
	m.chatAttempts.WithLabelValues(version, outcome).Inc()
}

func (m *Prometheus) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *Prometheus) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *Prometheus) IncSheetFallbacks(op string) {
	m.sheetFallbacks.WithLabelValues(op).Inc()
}

func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Noop is used when metrics are disabled.
type Noop struct{}

func (Noop) IncRequestsTotal(_ string, _ int)                 {}
func (Noop) ObserveRequestDuration(_ string, _ time.Duration) {}
func (Noop) IncChatAttempt(_, _ string)                       {}
func (Noop) IncCacheHits()                                    {}
func (Noop) IncCacheMisses()                                  {}
func (Noop) IncSheetFallbacks(_ string)                       {}
func (Noop) Handler() http.Handler                            { return http.NotFoundHandler() }
