// Package location describes position fixes and how they were matched to a route.
package location

import (
	"math"

	"github.com/paulmach/orb"
)

// GpsInfo is a single position fix from a positioning source.
type GpsInfo struct {
	Latitude           float64
	Longitude          float64
	HorizontalAccuracy float64 // metres
	Speed              float64 // m/s, negative when unknown
	Bearing            float64 // degrees clockwise from north, negative when unknown
	Timestamp          float64 // unix seconds
}

func (g GpsInfo) HasSpeed() bool   { return g.Speed >= 0 }
func (g GpsInfo) HasBearing() bool { return g.Bearing >= 0 }

// NewGpsInfo returns a fix with no speed or bearing.
func NewGpsInfo(lat, lon, accuracy, timestamp float64) GpsInfo {
	return GpsInfo{
		Latitude:           lat,
		Longitude:          lon,
		HorizontalAccuracy: accuracy,
		Speed:              -1,
		Bearing:            -1,
		Timestamp:          timestamp,
	}
}

// RouteMatchingInfo records where a fix was snapped onto a route.
type RouteMatchingInfo struct {
	matched           bool
	point             orb.Point
	index             int
	distanceFromBegin float64
}

func (m *RouteMatchingInfo) Set(p orb.Point, index int, mercatorDistanceFromBegin float64) {
	m.matched = true
	m.point = p
	m.index = index
	m.distanceFromBegin = mercatorDistanceFromBegin
}

func (m *RouteMatchingInfo) Reset() { *m = RouteMatchingInfo{} }

func (m RouteMatchingInfo) IsMatched() bool { return m.matched }

// Position is the projected point on the route.
func (m RouteMatchingInfo) Position() orb.Point { return m.point }

// Index is the index of the route segment the point lies on.
func (m RouteMatchingInfo) Index() int { return m.index }

// DistanceFromBegin is the planar distance along the route from its first point.
func (m RouteMatchingInfo) DistanceFromBegin() float64 { return m.distanceFromBegin }

// AngleToBearing converts a counter-clockwise angle from east (degrees) into a
// compass bearing in [0, 360).
func AngleToBearing(angle float64) float64 {
	b := math.Mod(90-angle, 360)
	if b < 0 {
		b += 360
	}
	return b
}
