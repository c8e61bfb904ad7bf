package gtfs

// StopTime is one row of stop_times.txt for a trip.
type StopTime struct {
	StopID    string
	Sequence  int
	Arrival   string // HH:MM:SS, may exceed 24h
	Departure string
}

// Index stores GTFS static data in memory for fast lookups.
// Fields are exported for gob encoding; treat them as read-only.
type Index struct {
	AgencyID        string
	AgencyName      string
	RouteShortNames map[string]string       // route_id -> short_name
	TripToRoute     map[string]string       // trip_id -> route_id
	TripHeadsign    map[string]string       // trip_id -> headsign
	TripDirection   map[string]string       // trip_id -> direction_id ("0"|"1")
	TripShapeID     map[string]string       // trip_id -> shape_id
	TripStopTimes   map[string][]StopTime   // trip_id -> stop times ordered by sequence
	StopNames       map[string]string       // stop_id -> name
	StopCoord       map[string][2]float64   // stop_id -> [lon,lat]
	ShapePoints     map[string][][2]float64 // shape_id -> ordered points [lon,lat]
}

// NewIndex creates an empty index.
func NewIndex(agencyID string) *Index {
	return &Index{
		AgencyID:        agencyID,
		RouteShortNames: map[string]string{},
		TripToRoute:     map[string]string{},
		TripHeadsign:    map[string]string{},
		TripDirection:   map[string]string{},
		TripShapeID:     map[string]string{},
		TripStopTimes:   map[string][]StopTime{},
		StopNames:       map[string]string{},
		StopCoord:       map[string][2]float64{},
		ShapePoints:     map[string][][2]float64{},
	}
}

// TripInfo is the descriptive data of one trip.
type TripInfo struct {
	TripID          string
	RouteID         string
	LineName        string
	DirectionID     string
	Headsign        string
	OriginStopID    string
	OriginName      string
	DestinationID   string
	DestinationName string
}

func (g *Index) HasTrip(tripID string) bool {
	_, ok := g.TripStopTimes[tripID]
	return ok
}

// Trip returns the descriptive data of a trip that has stop times.
func (g *Index) Trip(tripID string) (TripInfo, bool) {
	stops, ok := g.TripStopTimes[tripID]
	if !ok {
		return TripInfo{}, false
	}
	routeID := g.TripToRoute[tripID]
	info := TripInfo{
		TripID:      tripID,
		RouteID:     routeID,
		LineName:    g.RouteShortNames[routeID],
		DirectionID: g.TripDirection[tripID],
		Headsign:    g.TripHeadsign[tripID],
	}
	if len(stops) > 0 {
		info.OriginStopID = stops[0].StopID
		info.OriginName = g.StopNames[info.OriginStopID]
		info.DestinationID = stops[len(stops)-1].StopID
		info.DestinationName = g.StopNames[info.DestinationID]
	}
	return info, true
}

func (g *Index) StopName(stopID string) string { return g.StopNames[stopID] }

func (g *Index) StopTimes(tripID string) []StopTime { return g.TripStopTimes[tripID] }

func (g *Index) ShapeIDForTrip(tripID string) string { return g.TripShapeID[tripID] }

// TripHasSpatialData reports whether the trip has a shape with at least two points.
func (g *Index) TripHasSpatialData(tripID string) bool {
	sh := g.TripShapeID[tripID]
	return sh != "" && len(g.ShapePoints[sh]) > 1
}
