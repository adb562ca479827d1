// Package metrics exposes Prometheus collectors for the harvesting pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal       *prometheus.CounterVec
	rowsSkippedTotal        prometheus.Counter
	documentsHarvestedTotal *prometheus.CounterVec
	ingestFailuresTotal     prometheus.Counter
	recordsPromotedTotal    prometheus.Counter
	promoteFailuresTotal    prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_pages_fetched_total",
				Help: "Total number of search-result pages fetched, labeled by partition.",
			},
			[]string{"partition"},
		)

		rowsSkippedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_rows_skipped_total",
				Help: "Total number of result rows skipped for missing required fields.",
			},
		)

		documentsHarvestedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_documents_total",
				Help: "Total number of documents ingested into landing, labeled by file type.",
			},
			[]string{"file_type"},
		)

		ingestFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_ingest_failures_total",
				Help: "Total number of records that failed landing ingestion.",
			},
		)

		recordsPromotedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_records_promoted_total",
				Help: "Total number of landing records promoted into staging.",
			},
		)

		promoteFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_promote_failures_total",
				Help: "Total number of landing records that failed promotion.",
			},
		)
	})
}

// PageFetched records one results-page fetch for the given partition.
func PageFetched(partition string) {
	if pagesFetchedTotal != nil {
		pagesFetchedTotal.WithLabelValues(partition).Inc()
	}
}

// RowSkipped records one row skipped during extraction.
func RowSkipped() {
	if rowsSkippedTotal != nil {
		rowsSkippedTotal.Inc()
	}
}

// DocumentHarvested records one successful landing ingestion.
func DocumentHarvested(fileType string) {
	if documentsHarvestedTotal != nil {
		documentsHarvestedTotal.WithLabelValues(fileType).Inc()
	}
}

// IngestFailed records one failed landing ingestion.
func IngestFailed() {
	if ingestFailuresTotal != nil {
		ingestFailuresTotal.Inc()
	}
}

// RecordPromoted records one successful promotion.
func RecordPromoted() {
	if recordsPromotedTotal != nil {
		recordsPromotedTotal.Inc()
	}
}

// PromoteFailed records one failed promotion.
func PromoteFailed() {
	if promoteFailuresTotal != nil {
		promoteFailuresTotal.Inc()
	}
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
