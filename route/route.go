// Package route is the navigation state of one planned route.
//
// A Route owns the route geometry (a full and an optional simplified
// polyline), the time, turn and street tables and the progress cursor. It
// answers progress queries, matches position fixes through a Matcher and
// round-trips through the JSON route document.
//
// A Route has no internal locking: mutations (fixes, setters, Swap, FromJSON)
// must be serialized against each other and against queries by the caller,
// see the tracking package.
package route

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/route-follower/mercator"
	"github.com/theoremus-urban-solutions/route-follower/polyline"
	"github.com/theoremus-urban-solutions/route-follower/turns"
)

// TimeItem is a time checkpoint: the cumulative travel time at a route point.
type TimeItem struct {
	Index   uint32
	Seconds uint32
}

// StreetItem names the street that starts at a route point.
type StreetItem struct {
	Index uint32
	Name  string
}

type Route struct {
	router   string
	name     string
	settings Settings

	poly       *polyline.Polyline
	simplified *polyline.Polyline

	turns   []turns.TurnItem
	times   []TimeItem
	streets []StreetItem

	absentCountries map[string]struct{}

	// unix seconds of the last processed fix, 0 when none
	currentTime float64
}

// New builds a route over points (projected coordinates).
func New(router string, points orb.LineString, name string, settings Settings) *Route {
	r := &Route{
		router:          router,
		name:            name,
		settings:        settings,
		absentCountries: map[string]struct{}{},
	}
	r.SetGeometry(points)
	return r
}

// Swap exchanges the whole state of two routes.
func (r *Route) Swap(other *Route) {
	*r, *other = *other, *r
}

func (r *Route) RouterID() string { return r.router }
func (r *Route) Name() string { return r.name }
func (r *Route) Settings() Settings { return r.settings }
func (r *Route) CurrentTime() float64 { return r.currentTime }
func (r *Route) IsValid() bool { return r.poly.IsValid() }
func (r *Route) Points() orb.LineString { return r.poly.Points() }
func (r *Route) Cursor() polyline.Cursor { return r.poly }

// SimplifiedCursor is the read-only view of the simplified polyline; it is
// invalid unless the settings keep pedestrian info.
func (r *Route) SimplifiedCursor() polyline.Cursor { return r.simplified }

func (r *Route) SetSettings(s Settings) {
	r.settings = s
	r.update()
}

// SetGeometry replaces the route points, resets the cursor and rebuilds the simplified polyline.
func (r *Route) SetGeometry(points orb.LineString) {
	r.poly = polyline.New(points)
	r.update()
}

func (r *Route) SetTurnInstructions(t []turns.TurnItem) {
	r.turns = append([]turns.TurnItem(nil), t...)
}

func (r *Route) SetSectionTimes(t []TimeItem) {
	r.times = append([]TimeItem(nil), t...)
}

func (r *Route) SetStreetNames(s []StreetItem) {
	r.streets = append([]StreetItem(nil), s...)
}

func (r *Route) Turns() []turns.TurnItem { return append([]turns.TurnItem(nil), r.turns...) }
func (r *Route) Times() []TimeItem { return append([]TimeItem(nil), r.times...) }
func (r *Route) Streets() []StreetItem { return append([]StreetItem(nil), r.streets...) }

// AddAbsentCountry records a region the router had no data for. Empty names are ignored.
func (r *Route) AddAbsentCountry(name string) {
	if name == "" {
		return
	}
	if r.absentCountries == nil {
		r.absentCountries = map[string]struct{}{}
	}
	r.absentCountries[name] = struct{}{}
}

// AbsentCountries returns the recorded regions in sorted order.
func (r *Route) AbsentCountries() []string {
	out := make([]string, 0, len(r.absentCountries))
	for c := range r.absentCountries {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (r *Route) update() {
	r.poly.SetHysteresisM(r.settings.HysteresisM)
	if r.poly.IsValid() && r.settings.KeepPedestrianInfo {
		r.simplified = polyline.New(mercator.Simplify(r.poly.Points(), r.settings.SimplifyToleranceM))
		r.simplified.SetHysteresisM(r.settings.HysteresisM)
	} else {
		r.simplified = polyline.New(nil)
	}
	r.currentTime = 0
}

func (r *Route) DebugString() string {
	return fmt.Sprintf("Route{router: %q, name: %q, %s, turns: %d, times: %d, streets: %d}",
		r.router, r.name, r.poly, len(r.turns), len(r.times), len(r.streets))
}
