package providers

import (
	"time"
	"tsd/internal/services"
	"tsd/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
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

func NewMetricsProvider(conf *structures.Config, ledger services.LedgerServiceInterface, migration services.MigrationServiceInterface, events EventProviderInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tsd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tsd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tsd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tsd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tsd_persistence_duration_seconds",
			Help:    "Duration of snapshot persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tsd_streams_live",
		Help: "Number of live stream records",
	}, func() float64 {
		return float64(ledger.LiveStreamCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tsd_streams_created_total",
		Help: "Streams created since start",
	}, func() float64 {
		return float64(ledger.StreamsCreated())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tsd_streams_cancelled_total",
		Help: "Streams cancelled since start",
	}, func() float64 {
		return float64(ledger.StreamsCancelled())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tsd_value_withdrawn_total",
		Help: "Total value paid out to receivers since start",
	}, func() float64 {
		return float64(ledger.ValueWithdrawn())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tsd_contract_version",
		Help: "Current schema version",
	}, func() float64 {
		return float64(migration.Version())
	})

	for _, topic := range EventTopics {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "tsd_events_total",
			Help:        "Events emitted since start, by topic",
			ConstLabels: prometheus.Labels{"topic": topic},
		}, func() float64 {
			return float64(events.Count(topic))
		})
	}

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
