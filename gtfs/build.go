package gtfs

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/route-follower/mercator"
	"github.com/theoremus-urban-solutions/route-follower/route"
	"github.com/theoremus-urban-solutions/route-follower/turns"
)

// RouterID identifies routes built from GTFS static data.
const RouterID = "gtfs"

var (
	ErrTripNotFound = errors.New("trip not found")
	ErrNoGeometry   = errors.New("trip has no usable geometry")
)

// BuildRoute builds a followable route for a trip.
func (g *Index) BuildRoute(tripID string, settings route.Settings) (*route.Route, error) {
	stops, ok := g.TripStopTimes[tripID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTripNotFound, tripID)
	}
	points := g.tripGeometry(tripID, stops)
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrNoGeometry, tripID)
	}

	name := g.TripHeadsign[tripID]
	if name == "" {
		name = tripID
	}
	r := route.New(RouterID, points, name, settings)

	snapped := g.snapStops(points, stops)
	r.SetSectionTimes(g.stopTimes(stops, snapped))
	r.SetStreetNames(g.stopStreets(stops, snapped))
	r.SetTurnInstructions(g.stopTurns(stops, snapped))
	return r, nil
}

// tripGeometry returns the projected trip shape, or the stop coordinates when
// the trip has no shape.
func (g *Index) tripGeometry(tripID string, stops []StopTime) orb.LineString {
	if g.TripHasSpatialData(tripID) {
		shape := g.ShapePoints[g.TripShapeID[tripID]]
		ls := make(orb.LineString, 0, len(shape))
		for _, p := range shape {
			ls = append(ls, mercator.FromLatLon(p[1], p[0]))
		}
		return ls
	}
	ls := make(orb.LineString, 0, len(stops))
	for _, st := range stops {
		if c, ok := g.StopCoord[st.StopID]; ok {
			ls = append(ls, mercator.FromLatLon(c[1], c[0]))
		}
	}
	return ls
}

// snapStops returns for every stop the nearest route point at or after the
// point of the previous stop. Stops without coordinates reuse the previous point.
func (g *Index) snapStops(points orb.LineString, stops []StopTime) []int {
	out := make([]int, len(stops))
	from := 0
	for i, st := range stops {
		c, ok := g.StopCoord[st.StopID]
		if !ok {
			out[i] = from
			continue
		}
		p := mercator.FromLatLon(c[1], c[0])
		best, bestDist := from, math.MaxFloat64
		for j := from; j < len(points); j++ {
			if d := mercator.DistanceOnEarth(points[j], p); d < bestDist {
				best, bestDist = j, d
			}
		}
		out[i] = best
		from = best
	}
	return out
}

func (g *Index) stopTimes(stops []StopTime, snapped []int) []route.TimeItem {
	items := make([]route.TimeItem, 0, len(stops))
	base := -1
	var last uint32
	for i, st := range stops {
		t := st.Arrival
		if t == "" {
			t = st.Departure
		}
		if i == 0 && st.Departure != "" {
			t = st.Departure
		}
		sec, ok := parseGTFSTime(t)
		if !ok {
			continue
		}
		if base < 0 {
			base = sec
		}
		elapsed := uint32(0)
		if sec > base {
			elapsed = uint32(sec - base)
		}
		if elapsed < last {
			elapsed = last
		}
		last = elapsed
		items = append(items, route.TimeItem{Index: uint32(snapped[i]), Seconds: elapsed})
	}
	return items
}

func (g *Index) stopStreets(stops []StopTime, snapped []int) []route.StreetItem {
	items := make([]route.StreetItem, 0, len(stops))
	for i, st := range stops {
		item := route.StreetItem{Index: uint32(snapped[i]), Name: g.StopNames[st.StopID]}
		if n := len(items); n > 0 && items[n-1].Index == item.Index {
			items[n-1] = item
			continue
		}
		items = append(items, item)
	}
	return items
}

func (g *Index) stopTurns(stops []StopTime, snapped []int) []turns.TurnItem {
	items := make([]turns.TurnItem, 0, len(stops))
	for i := 1; i < len(stops); i++ {
		if snapped[i] == 0 {
			continue
		}
		dir := turns.GoStraight
		if i == len(stops)-1 {
			dir = turns.ReachedYourDestination
		}
		items = append(items, turns.TurnItem{
			Index:      uint32(snapped[i]),
			Direction:  dir,
			SourceName: g.StopNames[stops[i-1].StopID],
			TargetName: g.StopNames[stops[i].StopID],
		})
	}
	return items
}

// parseGTFSTime parses HH:MM:SS (hours may exceed 24) into seconds.
func parseGTFSTime(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		v[i] = n
	}
	if v[1] > 59 || v[2] > 59 {
		return 0, false
	}
	return v[0]*3600 + v[1]*60 + v[2], true
}
