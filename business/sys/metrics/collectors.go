package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
)

// ProfileCountQuery counts the registered profiles.
const ProfileCountQuery = "SELECT COUNT(*) FROM profiles"

// ProfileCountCollector reports the number of registered profiles.
type ProfileCountCollector struct {
	db    *sql.DB
	count *prometheus.Desc
}

// NewProfileCountCollector constructs a collector over the profiles table.
func NewProfileCountCollector(db *sql.DB) *ProfileCountCollector {
	return &ProfileCountCollector{
		db: db,
		count: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "profiles", "total_count"),
			"Total number of registered profiles",
			nil,
			prometheus.Labels{"source": "sqlite"},
		),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *ProfileCountCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.count
}

// Collect implements the prometheus.Collector interface.
func (c *ProfileCountCollector) Collect(ch chan<- prometheus.Metric) {
	var count int64
	if err := c.db.QueryRow(ProfileCountQuery).Scan(&count); err != nil {
		ch <- prometheus.NewInvalidMetric(c.count, err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.count, prometheus.GaugeValue, float64(count))
}

// =============================================================================

// Ledger represents the ledger values reported by the ChainCollector.
type Ledger interface {
	QueryMempoolLength() int
	QueryChainHeight() int
}

// ChainCollector reports the queue length and the chain height.
type ChainCollector struct {
	ledger Ledger
	queue  *prometheus.Desc
	height *prometheus.Desc
}

// NewChainCollector constructs a collector over the ledger.
func NewChainCollector(ledger Ledger) *ChainCollector {
	return &ChainCollector{
		ledger: ledger,
		queue: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "queue_length"),
			"Number of transactions waiting to be mined",
			nil, nil,
		),
		height: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "chain_height"),
			"Number of blocks in the chain",
			nil, nil,
		),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *ChainCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queue
	ch <- c.height
}

// Collect implements the prometheus.Collector interface.
func (c *ChainCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.queue, prometheus.GaugeValue, float64(c.ledger.QueryMempoolLength()))
	ch <- prometheus.MustNewConstMetric(c.height, prometheus.GaugeValue, float64(c.ledger.QueryChainHeight()))
}
