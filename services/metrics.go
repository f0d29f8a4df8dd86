package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	topPapersRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citegraph_top_papers_requests_total",
			Help: "Top-papers lookups by cache status (HIT, MISS, BYPASS).",
		},
		[]string{"cache_status"},
	)
	cacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citegraph_cache_errors_total",
			Help: "Absorbed cache backend failures by operation.",
		},
		[]string{"op"},
	)
	rankingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "citegraph_ranking_duration_seconds",
			Help:    "Time spent computing top-papers rankings against the database.",
			Buckets: prometheus.DefBuckets,
		},
	)
	papersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "citegraph_papers_total",
			Help: "Number of papers at the last statistics snapshot.",
		},
	)
	citationsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "citegraph_citations_total",
			Help: "Number of citations at the last statistics snapshot.",
		},
	)
	generatedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citegraph_generated_records_total",
			Help: "Synthetic records written by the generator.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		topPapersRequests,
		cacheErrors,
		rankingDuration,
		papersTotal,
		citationsTotal,
		generatedRecords,
	)
}
