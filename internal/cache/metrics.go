package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache metrics carry a "cache" label holding the BackendConfig group.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animeproviders_cache_hits_total",
			Help: "Total number of cache hits.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animeproviders_cache_misses_total",
			Help: "Total number of cache misses.",
		},
		[]string{"cache"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animeproviders_cache_evictions_total",
			Help: "Total number of entries evicted from the cache.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, EvictionsTotal)
}

// entriesCollector reports the entry count of one cache group, read at scrape time.
type entriesCollector struct {
	desc *prometheus.Desc
	size func() int
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.size()))
}

var (
	collectorsMu sync.Mutex
	collectors   = make(map[string]*entriesCollector)
	// registerer is swapped by tests for an isolated registry
	registerer prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector registers the entries gauge of group, replacing
// the collector of a previous cache with the same group.
func registerEntriesCollector(group string, size func() int) {
	c := &entriesCollector{
		desc: prometheus.NewDesc(
			"animeproviders_cache_entries",
			"Current number of entries in the cache.",
			nil,
			prometheus.Labels{"cache": group},
		),
		size: size,
	}

	collectorsMu.Lock()
	defer collectorsMu.Unlock()

	if old, ok := collectors[group]; ok {
		registerer.Unregister(old)
	}
	collectors[group] = c
	_ = registerer.Register(c)
}

func unregisterEntriesCollector(group string) {
	collectorsMu.Lock()
	defer collectorsMu.Unlock()

	if c, ok := collectors[group]; ok {
		registerer.Unregister(c)
		delete(collectors, group)
	}
}
