// Package metrics exposes Prometheus counters for position fix processing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FixesProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "routefollower_fixes_processed_total",
		Help: "Total number of position fixes applied to a route",
	})
	FixesMatchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "routefollower_fixes_matched_total",
		Help: "Total number of fixes within the matching threshold of their route",
	})
	FixesSnappedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "routefollower_fixes_snapped_total",
		Help: "Total number of fixes whose coordinates were replaced by the route projection",
	})
	FixesOffRouteTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "routefollower_fixes_off_route_total",
		Help: "Total number of fixes that could not move the route cursor",
	})
	FixesUnknownVehicleTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "routefollower_fixes_unknown_vehicle_total",
		Help: "Total number of feed fixes for vehicles without a route",
	})
	DistanceToRouteM = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "routefollower_distance_to_route_meters",
		Help:    "Distance between a fix and its route projection in metres",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	FeedFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routefollower_feed_fetch_total",
		Help: "GTFS-RT feed fetches by result",
	}, []string{"result"})
	FeedFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "routefollower_feed_fetch_duration_ms",
		Help:    "GTFS-RT feed fetch duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	TrackedVehicles = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "routefollower_tracked_vehicles",
		Help: "Number of vehicles with an active route session",
	})
)

func init() {
	prometheus.MustRegister(FixesProcessedTotal)
	prometheus.MustRegister(FixesMatchedTotal)
	prometheus.MustRegister(FixesSnappedTotal)
	prometheus.MustRegister(FixesOffRouteTotal)
	prometheus.MustRegister(FixesUnknownVehicleTotal)
	prometheus.MustRegister(DistanceToRouteM)
	prometheus.MustRegister(FeedFetchTotal)
	prometheus.MustRegister(FeedFetchDurationMs)
	prometheus.MustRegister(TrackedVehicles)
}

// Handler serves every registered metric for /metrics.
func Handler() http.Handler { return promhttp.Handler() }
