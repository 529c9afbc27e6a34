package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// storm-track ingestion pipeline.
type Metrics struct {
	RecordsDecoded   prometheus.Counter
	DecodeFailures   prometheus.Counter
	RecordsPublished prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Deck fetch metrics.
	Fetches       *prometheus.CounterVec // labels: outcome={success,connectivity,error}
	FetchDuration prometheus.Histogram

	// Per-storm ingestion metrics.
	IngestDuration prometheus.Histogram
	TrackSize      prometheus.Histogram

	// Storm-catalog metrics.
	CatalogLookups *prometheus.CounterVec // labels: outcome={success,miss,error}
	CatalogCache   *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_ingest",
			Name:      "records_decoded_total",
			Help:      "Total advisory records decoded into the output table.",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_ingest",
			Name:      "decode_failures_total",
			Help:      "Total deck decodes aborted by a malformed line.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_ingest",
			Name:      "records_published_total",
			Help:      "Total records written to the configured sinks.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_ingest",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_ingest",
			Name:      "fetches_total",
			Help:      "Deck fetch attempts by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_ingest",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one deck download.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_ingest",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete fetch-decode-load cycle for one storm.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		TrackSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_ingest",
			Name:      "track_size_records",
			Help:      "Number of records decoded from one deck.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000, 2500},
		}),
		CatalogLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_ingest",
			Name:      "catalog_lookups_total",
			Help:      "Storm-catalog lookups by outcome.",
		}, []string{"outcome"}),
		CatalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_ingest",
			Name:      "catalog_cache_total",
			Help:      "Storm-catalog cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.RecordsDecoded,
		m.DecodeFailures,
		m.RecordsPublished,
		m.PipelineRunning,
		m.Fetches,
		m.FetchDuration,
		m.IngestDuration,
		m.TrackSize,
		m.CatalogLookups,
		m.CatalogCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsDecoded:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_ingest", Name: "records_decoded_total"}),
		DecodeFailures:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_ingest", Name: "decode_failures_total"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_ingest", Name: "records_published_total"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "storm_ingest", Name: "pipeline_running"}),
		Fetches:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_ingest", Name: "fetches_total"}, []string{"outcome"}),
		FetchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "storm_ingest", Name: "fetch_duration_seconds"}),
		IngestDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "storm_ingest", Name: "ingest_duration_seconds"}),
		TrackSize:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "storm_ingest", Name: "track_size_records"}),
		CatalogLookups:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_ingest", Name: "catalog_lookups_total"}, []string{"outcome"}),
		CatalogCache:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_ingest", Name: "catalog_cache_total"}, []string{"result"}),
	}
}
