package route

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/route-follower/mercator"
	"github.com/theoremus-urban-solutions/route-follower/polyline"
	"github.com/theoremus-urban-solutions/route-follower/turns"
)

const (
	// onEndToleranceM is the remaining distance at which the route counts as finished.
	onEndToleranceM = 10.0
	// streetNameLinkM is how far ahead a street name may start and still be reported.
	streetNameLinkM = 400.0
	zeroDistanceM   = 1e-6
)

// firstAfter returns the first of n ordered entries whose point index lies
// beyond segment seg, or n. The cursor sits on the segment starting at seg, so
// an entry on seg itself is already behind it.
func firstAfter(n int, index func(i int) uint32, seg int) int {
	return sort.Search(n, func(i int) bool { return int(index(i)) > seg })
}

func (r *Route) TotalDistanceMeters() float64 { return r.poly.TotalDistanceM() }

func (r *Route) CurrentDistanceFromBeginMeters() float64 { return r.poly.DistanceFromBeginM() }

func (r *Route) CurrentDistanceToEndMeters() float64 { return r.poly.DistanceToEndM() }

func (r *Route) MercatorDistanceFromBegin() float64 { return r.poly.MercatorDistanceFromBegin() }

// TotalTimeSeconds is the time of the last checkpoint.
func (r *Route) TotalTimeSeconds() uint32 {
	if len(r.times) == 0 {
		return 0
	}
	return r.times[len(r.times)-1].Seconds
}

// TimeToEndSeconds estimates the remaining travel time: the tail after the
// next checkpoint plus the distance-proportional share of the current interval.
func (r *Route) TimeToEndSeconds() uint32 {
	if !r.poly.IsValid() || len(r.times) == 0 {
		return 0
	}
	cur := r.poly.Current()
	i := firstAfter(len(r.times), func(i int) uint32 { return r.times[i].Index }, cur.Index)
	if i == len(r.times) {
		return 0
	}

	next := r.times[i]
	var prev TimeItem
	if i > 0 {
		prev = r.times[i-1]
	}
	remaining := float64(r.TotalTimeSeconds()) - float64(next.Seconds)
	nextIt := r.poly.IterToIndex(int(next.Index))
	span := r.poly.DistanceM(r.poly.IterToIndex(int(prev.Index)), nextIt)
	if span > zeroDistanceM {
		interval := float64(next.Seconds) - float64(prev.Seconds)
		remaining += interval * r.poly.DistanceM(cur, nextIt) / span
	}
	if remaining <= 0 {
		return 0
	}
	return uint32(math.Round(remaining))
}

// timeAtIndex interpolates the cumulative time at route point idx.
func (r *Route) timeAtIndex(idx uint32) uint32 {
	n := len(r.times)
	if n == 0 {
		return 0
	}
	j := sort.Search(n, func(i int) bool { return r.times[i].Index >= idx })
	if j == n {
		return r.times[n-1].Seconds
	}
	next := r.times[j]
	if j == 0 || next.Index == idx {
		return next.Seconds
	}
	prev := r.times[j-1]
	from := r.poly.IterToIndex(int(prev.Index))
	span := r.poly.DistanceM(from, r.poly.IterToIndex(int(next.Index)))
	if span <= zeroDistanceM || next.Seconds < prev.Seconds {
		return next.Seconds
	}
	part := r.poly.DistanceM(from, r.poly.IterToIndex(int(idx)))
	return prev.Seconds + uint32(math.Round(float64(next.Seconds-prev.Seconds)*part/span))
}

func (r *Route) currentTurnIdx() int {
	return firstAfter(len(r.turns), func(i int) uint32 { return r.turns[i].Index }, r.poly.Current().Index)
}

func (r *Route) turnAt(i int) (turns.TurnItemDist, bool) {
	if !r.poly.IsValid() || i < 0 || i >= len(r.turns) {
		return turns.TurnItemDist{}, false
	}
	t := r.turns[i]
	return turns.TurnItemDist{
		Turn:       t,
		DistMeters: r.poly.DistanceM(r.poly.Current(), r.poly.IterToIndex(int(t.Index))),
	}, true
}

// CurrentTurn returns the first turn ahead of the cursor and the distance to it.
func (r *Route) CurrentTurn() (turns.TurnItemDist, bool) {
	return r.turnAt(r.currentTurnIdx())
}

// NextTurn returns the turn after the current one.
func (r *Route) NextTurn() (turns.TurnItemDist, bool) {
	return r.turnAt(r.currentTurnIdx() + 1)
}

// NextTurns returns the current and the next turn, as far as they exist.
func (r *Route) NextTurns() ([]turns.TurnItemDist, bool) {
	cur, ok := r.CurrentTurn()
	if !ok {
		return nil, false
	}
	out := []turns.TurnItemDist{cur}
	if next, ok := r.NextTurn(); ok {
		out = append(out, next)
	}
	return out, true
}

// TurnsDistances returns the cumulative planar distance from the route start
// to every turn, leaving out turns on the first and the last point.
func (r *Route) TurnsDistances() []float64 {
	points := r.poly.Points()
	out := make([]float64, 0, len(r.turns))
	var dist float64
	for i, t := range r.turns {
		if t.Index == 0 || int(t.Index) == len(points)-1 {
			continue
		}
		var former uint32
		if i > 0 {
			former = r.turns[i-1].Index
		}
		dist += turns.CalculateMercatorDistanceAlongPath(former, t.Index, points)
		out = append(out, dist)
	}
	return out
}

// streetAt returns the position of the most recent street entry at or before
// segment seg, the first entry when none precedes it, or -1 without streets.
func (r *Route) streetAt(seg int) int {
	if len(r.streets) == 0 {
		return -1
	}
	i := firstAfter(len(r.streets), func(i int) uint32 { return r.streets[i].Index }, seg)
	if i == 0 {
		return 0
	}
	return i - 1
}

// CurrentStreetName is the name of the street entry the cursor is on, which
// may be empty. It never looks past that entry.
func (r *Route) CurrentStreetName() string {
	if !r.poly.IsValid() {
		return ""
	}
	j := r.streetAt(r.poly.Current().Index)
	if j < 0 {
		return ""
	}
	return r.streets[j].Name
}

// StreetNameAfterIndex reports the first non-empty street name at or after
// route point idx, as long as it starts within streetNameLinkM of it.
func (r *Route) StreetNameAfterIndex(idx uint32) string {
	return r.streetNameAfter(r.poly.IterToIndex(int(idx)))
}

func (r *Route) streetNameAfter(it polyline.Iter) string {
	if !it.IsValid() {
		return ""
	}
	j := r.streetAt(it.Index)
	if j < 0 {
		return ""
	}
	for ; j < len(r.streets); j++ {
		s := r.streets[j]
		if s.Name == "" {
			continue
		}
		start := it
		if int(s.Index) > it.Index {
			start = r.poly.IterToIndex(int(s.Index))
		}
		if r.poly.DistanceM(it, start) < streetNameLinkM {
			return s.Name
		}
		return ""
	}
	return ""
}

// IsAtRouteEnd reports whether less than onEndToleranceM remain.
func (r *Route) IsAtRouteEnd() bool {
	if !r.poly.IsValid() {
		return false
	}
	return arrived(r.poly.DistanceToEndM())
}

// arrived is strict: exactly onEndToleranceM left is still on the way.
func arrived(toEndM float64) bool { return toEndM < onEndToleranceM }

// CurrentDirectionPoint is the point a direction arrow should aim at. Routes
// that keep pedestrian info take it from the simplified polyline.
func (r *Route) CurrentDirectionPoint() (orb.Point, bool) {
	if r.settings.KeepPedestrianInfo && r.simplified.IsValid() {
		return r.simplified.CurrentDirectionPoint(onEndToleranceM)
	}
	return r.poly.CurrentDirectionPoint(onEndToleranceM)
}

// PolySegAngle is the direction in degrees of the first non-degenerate
// segment starting at point ind, 0 when there is none.
func (r *Route) PolySegAngle(ind int) float64 {
	n := r.poly.Size()
	if ind < 0 || ind+1 >= n {
		return 0
	}
	p1 := r.poly.Point(ind)
	for i := ind + 1; i < n; i++ {
		p2 := r.poly.Point(i)
		if !mercator.AlmostEqual(p1, p2) {
			return mercator.RadToDeg(mercator.AngleTo(p1, p2))
		}
	}
	return 0
}
