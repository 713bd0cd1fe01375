package providers

import (
	"coinbot/internal/models"
	"coinbot/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(namespace string)
	IncCacheMisses(namespace string)
	ObservePersistenceDuration(duration time.Duration)
	IncCommandsTotal(command, outcome string)
	IncBroadcasts(kind string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
	commandsTotal       *prometheus.CounterVec
	broadcastsTotal     *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(namespace string) {
	m.cacheHits.WithLabelValues(namespace).Inc()
}

func (m *MetricsProvider) IncCacheMisses(namespace string) {
	m.cacheMisses.WithLabelValues(namespace).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCommandsTotal(command, outcome string) {
	m.commandsTotal.WithLabelValues(command, outcome).Inc()
}

func (m *MetricsProvider) IncBroadcasts(kind string) {
	m.broadcastsTotal.WithLabelValues(kind).Inc()
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

func NewMetricsProvider(conf *structures.Config, store *models.Store) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinbot_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coinbot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinbot_cache_hits_total",
			Help: "Cache hits by key namespace",
		}, []string{"namespace"}),

		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinbot_cache_misses_total",
			Help: "Cache misses by key namespace",
		}, []string{"namespace"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinbot_persistence_duration_seconds",
			Help:    "Duration of snapshot saves in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		commandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinbot_commands_total",
			Help: "Chat commands handled, by command and outcome",
		}, []string{"command", "outcome"}),

		broadcastsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinbot_broadcasts_total",
			Help: "Messages sent to every configured channel, by kind",
		}, []string{"kind"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "coinbot_accounts_total",
		Help: "Number of known accounts",
	}, func() float64 {
		var n int
		store.Update(func(st *models.State) { n = len(st.Accounts) })
		return float64(n)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "coinbot_coins_total",
		Help: "Sum of all account balances",
	}, func() float64 {
		var total int64
		store.Update(func(st *models.State) { total = st.TotalCoins() })
		return float64(total)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "coinbot_reminders_pending",
		Help: "Reminders waiting for delivery",
	}, func() float64 {
		var n int
		store.Update(func(st *models.State) { n = len(st.Reminders) })
		return float64(n)
	})

	return m
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits(_ string)                            {}
func (n *noopMetrics) IncCacheMisses(_ string)                          {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncCommandsTotal(_, _ string)                     {}
func (n *noopMetrics) IncBroadcasts(_ string)                           {}
