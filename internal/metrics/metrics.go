// Package metrics holds the Prometheus collectors of the ingestion and query
// pipelines. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pdfchat"

const (
	ResultOK             = "ok"
	ResultUnprocessable  = "unprocessable"
	ResultInvalid        = "invalid"
	ResultRateLimited    = "rate_limited"
	ResultGenerationFail = "generation_failed"
	ResultError          = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	ingestions     *prometheus.CounterVec
	ingestedChunks prometheus.Counter
	queries        *prometheus.CounterVec
	queryDuration  prometheus.Histogram
	publishErrors  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ingestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "PDF ingestions by result.",
		}, []string{"result"}),
		ingestedChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_chunks_total",
			Help:      "Chunks embedded and stored.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Questions answered by result.",
		}, []string{"result"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end query pipeline latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_publish_errors_total",
			Help:      "Document registry records that could not be published.",
		}),
	}
	reg.MustRegister(
		m.ingestions,
		m.ingestedChunks,
		m.queries,
		m.queryDuration,
		m.publishErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveIngestion(result string, chunks int) {
	if m == nil {
		return
	}
	m.ingestions.WithLabelValues(result).Inc()
	if chunks > 0 {
		m.ingestedChunks.Add(float64(chunks))
	}
}

func (m *Metrics) ObserveQuery(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(result).Inc()
	m.queryDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) IncPublishErrors() {
	if m == nil {
		return
	}
	m.publishErrors.Inc()
}
