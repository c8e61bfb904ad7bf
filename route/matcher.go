package route

import (
	"math"

	"github.com/theoremus-urban-solutions/route-follower/location"
	"github.com/theoremus-urban-solutions/route-follower/mercator"
)

// locationTimeThreshold is the largest gap in seconds between two fixes for
// which a speed based prediction is still trusted.
const locationTimeThreshold = 60.0

// Matcher advances a route cursor with position fixes and matches the fixes onto the route.
type Matcher struct {
	route *Route
}

func NewMatcher(r *Route) *Matcher {
	return &Matcher{route: r}
}

func (m *Matcher) Route() *Route { return m.route }

// Process moves the cursor to the fix and reports how the fix relates to the
// route. The returned fix is snapped to the route (and takes the route
// bearing) when it lies within the matching threshold and the settings ask
// for it. moved is false when no route segment was close enough to move the
// cursor; matching still uses the previous cursor then.
func (m *Matcher) Process(fix location.GpsInfo) (matched location.GpsInfo, info location.RouteMatchingInfo, moved bool) {
	r := m.route
	moved = r.moveIterator(fix)
	matched = fix
	r.matchLocationToRoute(&matched, &info)
	r.currentTime = fix.Timestamp
	return matched, info, moved
}

func (r *Route) predictedDistance(fix location.GpsInfo) float64 {
	if r.currentTime <= 0 || !fix.HasSpeed() {
		return -1
	}
	dt := fix.Timestamp - r.currentTime
	if dt <= 0 || dt >= locationTimeThreshold {
		return -1
	}
	return fix.Speed * dt
}

func (r *Route) moveIterator(fix location.GpsInfo) bool {
	if !r.poly.IsValid() {
		return false
	}
	radius := math.Max(r.settings.MatchingThresholdM, fix.HorizontalAccuracy)
	rect := mercator.RectByMeters(fix.Longitude, fix.Latitude, radius)
	predicted := r.predictedDistance(fix)

	res := r.poly.UpdateProjectionByPrediction(rect, predicted)
	if r.simplified.IsValid() {
		r.simplified.UpdateProjectionByPrediction(rect, predicted)
	}
	return res.IsValid()
}

func (r *Route) matchLocationToRoute(fix *location.GpsInfo, info *location.RouteMatchingInfo) {
	if !r.poly.IsValid() {
		return
	}
	it := r.poly.Current()
	d := mercator.DistanceOnEarth(it.Point, mercator.FromLatLon(fix.Latitude, fix.Longitude))
	if d >= r.settings.MatchingThresholdM {
		return
	}
	if r.settings.SnapToRoute {
		fix.Latitude, fix.Longitude = mercator.ToLatLon(it.Point)
	}
	if r.settings.MatchRoute {
		fix.Bearing = location.AngleToBearing(r.PolySegAngle(it.Index))
	}
	info.Set(it.Point, it.Index, r.poly.MercatorDistanceFromBegin())
}
