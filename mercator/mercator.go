package mercator

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
	"github.com/paulmach/orb/simplify"
)

// pointEpsilon is the relative tolerance used to decide two projected points are the same.
const pointEpsilon = 1e-12

// FromLatLon projects geographic degrees onto the plane.
func FromLatLon(lat, lon float64) orb.Point {
	return project.WGS84.ToMercator(orb.Point{lon, lat})
}

// ToLatLon returns the geographic degrees of a projected point.
func ToLatLon(p orb.Point) (lat, lon float64) {
	g := project.Mercator.ToWGS84(p)
	return g.Lat(), g.Lon()
}

func ToWGS84(p orb.Point) orb.Point { return project.Mercator.ToWGS84(p) }

func YToLat(y float64) float64 {
	lat, _ := ToLatLon(orb.Point{0, y})
	return lat
}

func XToLon(x float64) float64 {
	_, lon := ToLatLon(orb.Point{x, 0})
	return lon
}

// DistanceOnEarth returns the great-circle distance in metres between two projected points.
func DistanceOnEarth(a, b orb.Point) float64 {
	return geo.DistanceHaversine(ToWGS84(a), ToWGS84(b))
}

// RectByMeters returns the projected rectangle covering every point within
// meters of the given geographic position.
func RectByMeters(lon, lat, meters float64) orb.Bound {
	return project.Bound(geo.NewBoundAroundPoint(orb.Point{lon, lat}, meters), project.WGS84.ToMercator)
}

// PlanarDistance is the distance between two points measured on the plane.
func PlanarDistance(a, b orb.Point) float64 { return planar.Distance(a, b) }

// AngleTo returns the angle in radians of the vector a->b, counter-clockwise from the x axis.
func AngleTo(a, b orb.Point) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}

func RadToDeg(r float64) float64 { return r * 180 / math.Pi }

// AlmostEqual reports whether two projected points coincide within a relative epsilon.
func AlmostEqual(a, b orb.Point) bool {
	return almostEqual(a[0], b[0]) && almostEqual(a[1], b[1])
}

func almostEqual(x, y float64) bool {
	scale := math.Max(1, math.Max(math.Abs(x), math.Abs(y)))
	return math.Abs(x-y) <= pointEpsilon*scale
}

// ProjectToSegment returns the point of segment [a, b] closest to p and the
// segment parameter of that point, clamped to [0, 1].
func ProjectToSegment(a, b, p orb.Point) (orb.Point, float64) {
	vx := b[0] - a[0]
	vy := b[1] - a[1]
	denom := vx*vx + vy*vy
	if denom == 0 {
		return a, 0
	}
	t := ((p[0]-a[0])*vx + (p[1]-a[1])*vy) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return orb.Point{a[0] + t*vx, a[1] + t*vy}, t
}

// Simplify reduces the number of points of ls with Douglas-Peucker, using the
// squared perpendicular distance against tolerance (in projected metres).
// The input is not modified.
func Simplify(ls orb.LineString, tolerance float64) orb.LineString {
	if len(ls) == 0 {
		return nil
	}
	return simplify.DouglasPeucker(tolerance).LineString(ls.Clone())
}
