package tracking

import (
	"math"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/route-follower/location"
	"github.com/theoremus-urban-solutions/route-follower/mercator"
	"github.com/theoremus-urban-solutions/route-follower/metrics"
	"github.com/theoremus-urban-solutions/route-follower/route"
	"github.com/theoremus-urban-solutions/route-follower/siri"
	"github.com/theoremus-urban-solutions/route-follower/turns"
)

// Session is the route of one vehicle together with its latest fix.
type Session struct {
	mu       sync.RWMutex
	vehicle  string
	journey  siri.Journey
	route    *route.Route
	matcher  *route.Matcher
	hasFix   bool
	lastFix  location.GpsInfo
	lastInfo location.RouteMatchingInfo
}

func NewSession(vehicleID string, r *route.Route, journey siri.Journey) *Session {
	if journey.VehicleRef == "" {
		journey.VehicleRef = vehicleID
	}
	return &Session{
		vehicle: vehicleID,
		journey: journey,
		route:   r,
		matcher: route.NewMatcher(r),
	}
}

func (s *Session) VehicleID() string { return s.vehicle }

// ProcessFix matches a fix onto the route and advances the cursor.
func (s *Session) ProcessFix(fix location.GpsInfo) (location.GpsInfo, location.RouteMatchingInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processLocked(fix)
}

// Advance processes fix only when it is newer than the last processed one.
func (s *Session) Advance(fix location.GpsInfo) (location.RouteMatchingInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasFix && fix.Timestamp <= s.lastFix.Timestamp {
		return location.RouteMatchingInfo{}, false
	}
	_, info := s.processLocked(fix)
	return info, true
}

func (s *Session) processLocked(fix location.GpsInfo) (location.GpsInfo, location.RouteMatchingInfo) {
	matched, info, moved := s.matcher.Process(fix)
	s.hasFix = true
	s.lastFix = matched
	s.lastInfo = info

	metrics.FixesProcessedTotal.Inc()
	if !moved {
		metrics.FixesOffRouteTotal.Inc()
	}
	if info.IsMatched() {
		metrics.FixesMatchedTotal.Inc()
		metrics.DistanceToRouteM.Observe(mercator.DistanceOnEarth(info.Position(), mercator.FromLatLon(fix.Latitude, fix.Longitude)))
		if s.route.Settings().SnapToRoute {
			metrics.FixesSnappedTotal.Inc()
		}
	}
	return matched, info
}

// ReplaceRoute swaps in a new route. The last fix is kept but no longer counts as matched.
func (s *Session) ReplaceRoute(next *route.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route.Swap(next)
	s.lastInfo.Reset()
}

// LoadDocument replaces the route from a route document, keeping its name and settings.
func (s *Session) LoadDocument(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.route.FromJSON(data); err != nil {
		return err
	}
	s.lastInfo.Reset()
	return nil
}

func (s *Session) Document() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.route.ToJSON()
}

// Turn is a manoeuvre ahead of the vehicle.
type Turn struct {
	Index               uint32  `json:"index"`
	Direction           string  `json:"direction"`
	PedestrianDirection string  `json:"pedestrianDirection"`
	ExitNumber          uint32  `json:"exitNumber,omitempty"`
	SourceName          string  `json:"sourceName,omitempty"`
	TargetName          string  `json:"targetName,omitempty"`
	DistanceM           float64 `json:"distanceM"`
}

func newTurn(t turns.TurnItemDist) *Turn {
	return &Turn{
		Index:               t.Turn.Index,
		Direction:           t.Turn.Direction.String(),
		PedestrianDirection: t.Turn.PedestrianDirection.String(),
		ExitNumber:          t.Turn.ExitNum,
		SourceName:          t.Turn.SourceName,
		TargetName:          t.Turn.TargetName,
		DistanceM:           t.DistMeters,
	}
}

// Progress is a snapshot of a session.
type Progress struct {
	VehicleID       string   `json:"vehicleId"`
	RouteName       string   `json:"routeName"`
	RouterID        string   `json:"routerId"`
	Valid           bool     `json:"valid"`
	HasFix          bool     `json:"hasFix"`
	Matched         bool     `json:"matched"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	Bearing         float64  `json:"bearing"`
	Speed           float64  `json:"speed"`
	Timestamp       float64  `json:"timestamp"`
	CursorIndex     int      `json:"cursorIndex"`
	DistanceFromM   float64  `json:"distanceFromBeginM"`
	DistanceToEndM  float64  `json:"distanceToEndM"`
	TotalDistanceM  float64  `json:"totalDistanceM"`
	TotalTimeS      uint32   `json:"totalTimeS"`
	TimeToEndS      uint32   `json:"timeToEndS"`
	AtEnd           bool     `json:"atEnd"`
	StreetName      string   `json:"streetName,omitempty"`
	CurrentTurn     *Turn    `json:"currentTurn,omitempty"`
	NextTurn        *Turn    `json:"nextTurn,omitempty"`
	AbsentCountries []string `json:"absentCountries,omitempty"`

	turnOrder int
}

func (s *Session) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.route
	p := Progress{
		VehicleID:       s.vehicle,
		RouteName:       r.Name(),
		RouterID:        r.RouterID(),
		Valid:           r.IsValid(),
		HasFix:          s.hasFix,
		Matched:         s.lastInfo.IsMatched(),
		Bearing:         -1,
		Speed:           -1,
		CursorIndex:     r.Cursor().Current().Index,
		DistanceFromM:   r.CurrentDistanceFromBeginMeters(),
		DistanceToEndM:  r.CurrentDistanceToEndMeters(),
		TotalDistanceM:  r.TotalDistanceMeters(),
		TotalTimeS:      r.TotalTimeSeconds(),
		TimeToEndS:      r.TimeToEndSeconds(),
		AtEnd:           r.IsAtRouteEnd(),
		StreetName:      r.CurrentStreetName(),
		AbsentCountries: r.AbsentCountries(),
	}
	if s.hasFix {
		p.Latitude = s.lastFix.Latitude
		p.Longitude = s.lastFix.Longitude
		p.Bearing = s.lastFix.Bearing
		p.Speed = s.lastFix.Speed
		p.Timestamp = s.lastFix.Timestamp
	}
	if cur, ok := r.CurrentTurn(); ok {
		p.CurrentTurn = newTurn(cur)
		for i, t := range r.Turns() {
			if t.Index == cur.Turn.Index {
				p.turnOrder = i + 1
				break
			}
		}
	}
	if next, ok := r.NextTurn(); ok {
		p.NextTurn = newTurn(next)
	}
	return p
}

// Activity returns the SIRI VehicleActivity of the session, or false before the first fix.
func (s *Session) Activity(validFor time.Duration) (siri.VehicleActivityEntry, bool) {
	p := s.Progress()
	if !p.HasFix {
		return siri.VehicleActivityEntry{}, false
	}
	sec, frac := math.Modf(p.Timestamp)
	sp := siri.Progress{
		RecordedAt:         time.Unix(int64(sec), int64(frac*1e9)),
		HasPosition:        true,
		Latitude:           p.Latitude,
		Longitude:          p.Longitude,
		Bearing:            p.Bearing,
		Speed:              p.Speed,
		Matched:            p.Matched,
		CursorIndex:        p.CursorIndex,
		RouteName:          p.RouteName,
		StreetName:         p.StreetName,
		DistanceFromBeginM: p.DistanceFromM,
		DistanceToEndM:     p.DistanceToEndM,
		RouteLengthM:       p.TotalDistanceM,
		TimeToEndS:         p.TimeToEndS,
		AtEnd:              p.AtEnd,
	}
	if p.CurrentTurn != nil {
		sp.HasNextStop = true
		sp.NextStopName = p.CurrentTurn.TargetName
		sp.NextStopOrder = p.turnOrder
		sp.NextStopDistanceM = p.CurrentTurn.DistanceM
	}
	return siri.BuildVehicleActivity(s.journey, sp, validFor), true
}
