package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IngestMetrics struct {
	registry *prometheus.Registry

	refreshTotal    *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
	documentsKept   *prometheus.GaugeVec
	graphEntities   *prometheus.GaugeVec
}

func NewIngestMetrics(service string) *IngestMetrics {
	registry := prometheus.NewRegistry()

	refreshTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mat",
			Subsystem: "ingest",
			Name:      "refresh_total",
			Help:      "Total corpus refresh runs by status.",
		},
		[]string{"service", "status"},
	)
	refreshDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mat",
			Subsystem: "ingest",
			Name:      "refresh_duration_seconds",
			Help:      "Corpus refresh duration in seconds by status.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	documentsKept := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mat",
			Subsystem: "ingest",
			Name:      "documents_kept",
			Help:      "Documents surviving normalization in the latest refresh.",
		},
		[]string{"service"},
	)
	graphEntities := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mat",
			Subsystem: "ingest",
			Name:      "graph_entities",
			Help:      "Knowledge graph entities created in the latest refresh.",
		},
		[]string{"service"},
	)

	registry.MustRegister(refreshTotal, refreshDuration, documentsKept, graphEntities)

	return &IngestMetrics{
		registry:        registry,
		refreshTotal:    refreshTotal,
		refreshDuration: refreshDuration,
		documentsKept:   documentsKept,
		graphEntities:   graphEntities,
	}
}

func (m *IngestMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *IngestMetrics) FinishRefresh(service string, duration time.Duration, kept, entities int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.refreshTotal.WithLabelValues(service, status).Inc()
	m.refreshDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil {
		m.documentsKept.WithLabelValues(service).Set(float64(kept))
		m.graphEntities.WithLabelValues(service).Set(float64(entities))
	}
}
