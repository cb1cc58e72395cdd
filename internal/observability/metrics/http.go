package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatRequestsTotal  *prometheus.CounterVec
	chatContextTotal   *prometheus.CounterVec
	chatNoContextTotal *prometheus.CounterVec
	chatKGContextTotal *prometheus.CounterVec
	chatSources        *prometheus.HistogramVec
	chatDuration       *prometheus.HistogramVec
	chatFallbackTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mat",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mat",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total answered chat queries.",
		},
		[]string{"service"},
	)
	chatContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mat",
			Subsystem: "chat",
			Name:      "context_total",
			Help:      "Total chat queries answered with retrieved context.",
		},
		[]string{"service"},
	)
	chatNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mat",
			Subsystem: "chat",
			Name:      "no_context_total",
			Help:      "Total chat queries answered without any context.",
		},
		[]string{"service"},
	)
	chatKGContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mat",
			Subsystem: "chat",
			Name:      "kg_context_total",
			Help:      "Total chat queries enriched with knowledge graph facts.",
		},
		[]string{"service"},
	)
	chatSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mat",
			Subsystem: "chat",
			Name:      "sources",
			Help:      "Distribution of source documents per answered query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mat",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Answer pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	chatFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mat",
			Subsystem: "chat",
			Name:      "fallback_total",
			Help:      "Total chat queries that degraded to the fallback response.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		chatContextTotal,
		chatNoContextTotal,
		chatKGContextTotal,
		chatSources,
		chatDuration,
		chatFallbackTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		chatRequestsTotal:  chatRequestsTotal,
		chatContextTotal:   chatContextTotal,
		chatNoContextTotal: chatNoContextTotal,
		chatKGContextTotal: chatKGContextTotal,
		chatSources:        chatSources,
		chatDuration:       chatDuration,
		chatFallbackTotal:  chatFallbackTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// RecordChatAnswer records one completed answer pipeline run.
func (m *HTTPServerMetrics) RecordChatAnswer(service string, sourceCount int, contextUsed, kgContext, fallback bool, duration time.Duration) {
	m.chatRequestsTotal.WithLabelValues(service).Inc()
	m.chatSources.WithLabelValues(service).Observe(float64(sourceCount))
	m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())

	if contextUsed {
		m.chatContextTotal.WithLabelValues(service).Inc()
	} else {
		m.chatNoContextTotal.WithLabelValues(service).Inc()
	}
	if kgContext {
		m.chatKGContextTotal.WithLabelValues(service).Inc()
	}
	if fallback {
		m.chatFallbackTotal.WithLabelValues(service).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
