package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rickgao/abri-data/internal/database"
)

const namespace = "abri"

// StatsSource reports pool counters. *database.Store satisfies it.
type StatsSource interface {
	Stat() database.PoolStats
}

// PoolCollector exports a snapshot of pool counters on every scrape.
type PoolCollector struct {
	src StatsSource

	total        *prometheus.Desc
	idle         *prometheus.Desc
	acquired     *prometheus.Desc
	constructing *prometheus.Desc
	max          *prometheus.Desc
	acquires     *prometheus.Desc
	emptyWaits   *prometheus.Desc
	canceled     *prometheus.Desc
	acquireSecs  *prometheus.Desc
}

// NewPoolCollector creates a collector reading from src.
func NewPoolCollector(src StatsSource) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "db_pool", name), help, nil, nil)
	}
	return &PoolCollector{
		src:          src,
		total:        desc("total_conns", "Open connections, idle and in use."),
		idle:         desc("idle_conns", "Idle connections."),
		acquired:     desc("acquired_conns", "Connections checked out by sessions."),
		constructing: desc("constructing_conns", "Connections being dialed."),
		max:          desc("max_conns", "Connection ceiling: pool size plus overflow."),
		acquires:     desc("acquires_total", "Successful acquisitions."),
		emptyWaits:   desc("empty_acquires_total", "Acquisitions that waited because no connection was idle."),
		canceled:     desc("canceled_acquires_total", "Acquisitions abandoned by the caller or the acquire timeout."),
		acquireSecs:  desc("acquire_seconds_total", "Cumulative time spent acquiring connections."),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.idle
	ch <- c.acquired
	ch <- c.constructing
	ch <- c.max
	ch <- c.acquires
	ch <- c.emptyWaits
	ch <- c.canceled
	ch <- c.acquireSecs
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stat()
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns))
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns))
	ch <- prometheus.MustNewConstMetric(c.constructing, prometheus.GaugeValue, float64(s.ConstructingConns))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.MaxConns))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount))
	ch <- prometheus.MustNewConstMetric(c.emptyWaits, prometheus.CounterValue, float64(s.EmptyAcquireCount))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(s.CanceledAcquireCount))
	ch <- prometheus.MustNewConstMetric(c.acquireSecs, prometheus.CounterValue, s.AcquireDuration.Seconds())
}

// SessionMetrics counts session outcomes and times them. It implements
// database.SessionObserver.
type SessionMetrics struct {
	Sessions *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewSessionMetrics creates unregistered session metrics.
func NewSessionMetrics() *SessionMetrics {
	return &SessionMetrics{
		Sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "sessions_total",
			Help:      "Finished sessions by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "session_duration_seconds",
			Help:      "Time from begin to release, by outcome.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"outcome"}),
	}
}

// ObserveSession implements database.SessionObserver.
func (m *SessionMetrics) ObserveSession(outcome string, d time.Duration) {
	m.Sessions.WithLabelValues(outcome).Inc()
	m.Duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Register adds the pool collector for src and the session metrics to reg.
func Register(reg prometheus.Registerer, src StatsSource, sessions *SessionMetrics) error {
	for _, c := range []prometheus.Collector{NewPoolCollector(src), sessions.Sessions, sessions.Duration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

var _ database.SessionObserver = (*SessionMetrics)(nil)
