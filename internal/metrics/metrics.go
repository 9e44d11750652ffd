// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesProcessedTotal   prometheus.Counter
	membersHarvestedTotal prometheus.Counter
	harvestErrorsTotal    prometheus.Counter
	fetchRetriesTotal     prometheus.Counter
	checkpointsTotal      prometheus.Counter
	pendingPages          prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		pagesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_pages_processed_total",
			Help: "Total number of stream pages fully processed.",
		})
		membersHarvestedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_members_harvested_total",
			Help: "Total number of members persisted as artifacts.",
		})
		harvestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_errors_total",
			Help: "Total number of non-fatal harvest errors.",
		})
		fetchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_fetch_retries_total",
			Help: "Total number of fetch attempts that were retried.",
		})
		checkpointsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_checkpoints_total",
			Help: "Total number of state checkpoints written.",
		})
		pendingPages = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "harvester_pending_pages",
			Help: "Current size of the page frontier.",
		})
	})
}

// IncPageProcessed increments the processed-page counter.
func IncPageProcessed() {
	if pagesProcessedTotal != nil {
		pagesProcessedTotal.Inc()
	}
}

// IncMemberHarvested increments the harvested-member counter.
func IncMemberHarvested() {
	if membersHarvestedTotal != nil {
		membersHarvestedTotal.Inc()
	}
}

// IncError increments the non-fatal error counter.
func IncError() {
	if harvestErrorsTotal != nil {
		harvestErrorsTotal.Inc()
	}
}

// IncFetchRetry increments the retried-fetch counter.
func IncFetchRetry() {
	if fetchRetriesTotal != nil {
		fetchRetriesTotal.Inc()
	}
}

// IncCheckpoint increments the checkpoint counter.
func IncCheckpoint() {
	if checkpointsTotal != nil {
		checkpointsTotal.Inc()
	}
}

// SetPendingPages records the current frontier size.
func SetPendingPages(n int) {
	if pendingPages != nil {
		pendingPages.Set(float64(n))
	}
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
