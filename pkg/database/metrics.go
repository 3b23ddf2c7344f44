package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is the connection pool snapshot exported as metrics. It covers
// both pgxpool and database/sql pools.
type PoolStats struct {
	Acquired int64
	Idle     int64
	Total    int64
	Max      int64
	Waits    int64
}

// StatsFunc returns the current pool snapshot.
type StatsFunc func() PoolStats

// PgxStats adapts a pgxpool.
func PgxStats(pool *pgxpool.Pool) StatsFunc {
	return func() PoolStats {
		s := pool.Stat()
		return PoolStats{
			Acquired: int64(s.AcquiredConns()),
			Idle:     int64(s.IdleConns()),
			Total:    int64(s.TotalConns()),
			Max:      int64(s.MaxConns()),
			Waits:    s.EmptyAcquireCount(),
		}
	}
}

// SQLStats adapts a database/sql handle.
func SQLStats(db *sql.DB) StatsFunc {
	return func() PoolStats {
		s := db.Stats()
		return PoolStats{
			Acquired: int64(s.InUse),
			Idle:     int64(s.Idle),
			Total:    int64(s.OpenConnections),
			Max:      int64(s.MaxOpenConnections),
			Waits:    s.WaitCount,
		}
	}
}

// PoolStatsCollector implements prometheus.Collector for a storage pool.
type PoolStatsCollector struct {
	stats   StatsFunc
	backend string

	acquiredConns *prometheus.Desc
	idleConns     *prometheus.Desc
	totalConns    *prometheus.Desc
	maxConns      *prometheus.Desc
	waitCount     *prometheus.Desc
}

// NewPoolStatsCollector exports the snapshots returned by stats under the
// given backend label.
func NewPoolStatsCollector(stats StatsFunc, backend string) *PoolStatsCollector {
	labels := []string{"backend"}
	return &PoolStatsCollector{
		stats:   stats,
		backend: backend,
		acquiredConns: prometheus.NewDesc(
			"storefront_storage_pool_acquired_connections",
			"Number of connections currently in use",
			labels, nil,
		),
		idleConns: prometheus.NewDesc(
			"storefront_storage_pool_idle_connections",
			"Number of idle connections",
			labels, nil,
		),
		totalConns: prometheus.NewDesc(
			"storefront_storage_pool_total_connections",
			"Total number of open connections",
			labels, nil,
		),
		maxConns: prometheus.NewDesc(
			"storefront_storage_pool_max_connections",
			"Maximum number of connections allowed",
			labels, nil,
		),
		waitCount: prometheus.NewDesc(
			"storefront_storage_pool_waits_total",
			"Total number of acquires that had to wait for a connection",
			labels, nil,
		),
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.totalConns
	ch <- c.maxConns
	ch <- c.waitCount
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()

	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(s.Acquired), c.backend)
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(s.Idle), c.backend)
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(s.Total), c.backend)
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(s.Max), c.backend)
	ch <- prometheus.MustNewConstMetric(c.waitCount, prometheus.CounterValue, float64(s.Waits), c.backend)
}

// RegisterPoolMetrics registers a collector on reg. Registering the same
// backend twice is not an error.
func RegisterPoolMetrics(reg prometheus.Registerer, stats StatsFunc, backend string) error {
	err := reg.Register(NewPoolStatsCollector(stats, backend))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
