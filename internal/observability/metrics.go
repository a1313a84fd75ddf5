package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_feed"

// Metrics holds the Prometheus counters, histograms, and gauges for feed queries.
type Metrics struct {
	FetchRequests *prometheus.CounterVec // labels: outcome={success,empty,network_error,http_status,malformed}
	FetchDuration prometheus.Histogram
	LastSuccess   prometheus.Gauge

	FeaturesDecoded prometheus.Counter
	FeaturesSkipped prometheus.Counter
	RecordsReturned prometheus.Histogram

	FeedCache        *prometheus.CounterVec // labels: result={hit,miss}
	RecordsPublished prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.LastSuccess,
		m.FeaturesDecoded,
		m.FeaturesSkipped,
		m.RecordsReturned,
		m.FeedCache,
		m.RecordsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Feed queries by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a complete fetch-decode-enrich query.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "UNIX time of the last successful feed query.",
		}),
		FeaturesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_decoded_total",
			Help:      "Feed features decoded into records.",
		}),
		FeaturesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_skipped_total",
			Help:      "Feed features skipped for missing or mistyped fields.",
		}),
		RecordsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_returned",
			Help:      "Number of records returned per query.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		FeedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_cache_total",
			Help:      "Feed cache lookups by result.",
		}, []string{"result"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Records written to the sink topic.",
		}),
	}
}
