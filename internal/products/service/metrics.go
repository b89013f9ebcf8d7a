package service

import "github.com/prometheus/client_golang/prometheus"

const (
	metricCreatedTotal  = "products_created_total"
	metricUpdatedTotal  = "products_updated_total"
	metricDeletedTotal  = "products_deleted_total"
	metricCacheRequests = "products_cache_requests_total"

	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

type Metrics struct {
	Created       prometheus.Counter
	Updated       prometheus.Counter
	Deleted       prometheus.Counter
	CacheRequests *prometheus.CounterVec
}

// NewMetrics builds unregistered collectors; register them with Collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricCreatedTotal,
			Help: "Total number of products created",
		}),
		Updated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricUpdatedTotal,
			Help: "Total number of products updated",
		}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricDeletedTotal,
			Help: "Total number of products deleted",
		}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricCacheRequests,
			Help: "Cache lookups and failures by cache namespace and result",
		}, []string{"cache", "result"}),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Created, m.Updated, m.Deleted, m.CacheRequests}
}

func (m *Metrics) cacheResult(namespace, result string) {
	m.CacheRequests.WithLabelValues(namespace, result).Inc()
}
