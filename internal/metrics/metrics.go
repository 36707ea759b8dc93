// Package metrics holds the Prometheus collectors for lookups and index builds.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reversejp_queries_total",
		Help: "Total number of reverse lookups by endpoint",
	}, []string{"endpoint"})
	EmptyResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reversejp_empty_results_total",
		Help: "Total number of lookups where no probe matched",
	})
	ApproxMatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reversejp_approx_matches_total",
		Help: "Total number of lookups answered by a non-zero probe offset",
	})
	BadRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reversejp_bad_requests_total",
		Help: "Total number of requests rejected for invalid coordinates",
	})
	QueryDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reversejp_query_duration_ms",
		Help:    "Lookup duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100},
	})
	BuildDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reversejp_build_duration_seconds",
		Help:    "Index construction duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})
	IndexedPolygons = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reversejp_indexed_polygons",
		Help: "Number of polygons in the loaded index",
	})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(ApproxMatchesTotal)
	prometheus.MustRegister(BadRequestsTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(BuildDurationSeconds)
	prometheus.MustRegister(IndexedPolygons)
}

// ObserveQuery records one lookup. exact is false when a probe offset other
// than (0, 0) produced the match.
func ObserveQuery(endpoint string, ms float64, matched, exact bool) {
	QueriesTotal.WithLabelValues(endpoint).Inc()
	QueryDurationMs.Observe(ms)
	switch {
	case !matched:
		EmptyResultsTotal.Inc()
	case !exact:
		ApproxMatchesTotal.Inc()
	}
}

func Handler() http.Handler { return promhttp.Handler() }
