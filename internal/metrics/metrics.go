// Package metrics holds the Prometheus collectors of the user cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "usercache"

// Sync outcomes used as the "result" label.
const (
	ResultOK          = "ok"
	ResultRemoteError = "remote_error"
	ResultStoreError  = "storage_error"
	ResultSkipped     = "skipped"
)

type Metrics struct {
	SyncTotal    *prometheus.CounterVec
	SyncDuration prometheus.Histogram
	ClearTotal   prometheus.Counter
	CachedUsers  prometheus.Gauge
	Subscribers  prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests and the CLI use.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SyncTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_total",
			Help:      "Sync runs by result",
		}, []string{"result"}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync runs",
			Buckets:   prometheus.DefBuckets,
		}),
		ClearTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_clear_total",
			Help:      "Successful cache clears",
		}),
		CachedUsers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_users",
			Help:      "Cached users written by the last sync",
		}),
		Subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "user_subscribers",
			Help:      "Live subscriptions to the user table",
		}),
	}
}

// ObserveSync records one finished sync run.
func (m *Metrics) ObserveSync(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.SyncTotal.WithLabelValues(result).Inc()
	if result != ResultSkipped {
		m.SyncDuration.Observe(took.Seconds())
	}
}

func (m *Metrics) SetCachedUsers(n int) {
	if m == nil {
		return
	}
	m.CachedUsers.Set(float64(n))
}

func (m *Metrics) CacheCleared() {
	if m == nil {
		return
	}
	m.ClearTotal.Inc()
	m.CachedUsers.Set(0)
}
