package siri

import (
	"math"
	"time"
)

// Journey describes the service a vehicle is running.
type Journey struct {
	VehicleRef      string
	LineRef         string
	LineName        string
	DirectionRef    string
	OperatorRef     string
	OriginRef       string
	OriginName      string
	DestinationRef  string
	DestinationName string
	DatedJourneyRef string
	DataFrameRef    string
	VehicleMode     string
	DataSource      string
}

// Progress is the state of a vehicle on its route at one moment.
type Progress struct {
	RecordedAt  time.Time
	HasPosition bool
	Latitude    float64
	Longitude   float64
	Bearing     float64 // degrees, negative when unknown
	Speed       float64 // m/s, negative when unknown

	Matched     bool
	CursorIndex int
	RouteName   string
	StreetName  string

	DistanceFromBeginM float64
	DistanceToEndM     float64
	RouteLengthM       float64
	TimeToEndS         uint32
	AtEnd              bool

	HasNextStop       bool
	NextStopName      string
	NextStopOrder     int
	NextStopDistanceM float64
}

// atStopDistanceM is how close a vehicle must be to its next stop to be at it.
const atStopDistanceM = 10.0

// BuildVehicleActivity builds the VM activity of one vehicle.
func BuildVehicleActivity(j Journey, p Progress, validFor time.Duration) VehicleActivityEntry {
	mvj := MonitoredVehicleJourney{
		LineRef:           j.LineRef,
		DirectionRef:      j.DirectionRef,
		VehicleMode:       j.VehicleMode,
		PublishedLineName: j.LineName,
		OperatorRef:       j.OperatorRef,
		OriginRef:         j.OriginRef,
		OriginName:        j.OriginName,
		DestinationRef:    j.DestinationRef,
		DestinationName:   j.DestinationName,
		Monitored:         p.Matched,
		DataSource:        j.DataSource,
		VehicleRef:        j.VehicleRef,
		VehicleStatus:     "inProgress",
	}
	if j.DatedJourneyRef != "" {
		frame := j.DataFrameRef
		if frame == "" {
			frame = p.RecordedAt.UTC().Format("2006-01-02")
		}
		mvj.FramedVehicleJourneyRef = &FramedVehicleJourneyRef{
			DataFrameRef:           frame,
			DatedVehicleJourneyRef: j.DatedJourneyRef,
		}
	}
	if p.AtEnd {
		mvj.VehicleStatus = "completed"
	}
	if p.HasPosition {
		lat, lon := p.Latitude, p.Longitude
		mvj.VehicleLocation = &VehicleLocation{Latitude: &lat, Longitude: &lon}
	}
	if p.Bearing >= 0 {
		b := p.Bearing
		mvj.Bearing = &b
	}
	if p.Speed >= 0 {
		v := int(math.Round(p.Speed * 3.6))
		mvj.Velocity = &v
	}

	ext := &ActivityExtensions{
		Distances: Distances{
			DistanceFromBegin: p.DistanceFromBeginM,
			DistanceToEnd:     p.DistanceToEndM,
			RouteLength:       p.RouteLengthM,
		},
		TimeToEnd:   p.TimeToEndS,
		RouteName:   p.RouteName,
		StreetName:  p.StreetName,
		AtRouteEnd:  p.AtEnd,
		MatchedFix:  p.Matched,
		CursorIndex: p.CursorIndex,
	}
	if p.HasNextStop {
		order := p.NextStopOrder
		atStop := p.NextStopDistanceM < atStopDistanceM
		mvj.MonitoredCall = &MonitoredCall{
			Order:              &order,
			StopPointName:      p.NextStopName,
			VehicleAtStop:      &atStop,
			DestinationDisplay: j.DestinationName,
		}
		d := p.NextStopDistanceM
		ext.Distances.DistanceToNextStop = &d
	}

	return VehicleActivityEntry{
		RecordedAtTime:          Iso8601(p.RecordedAt),
		ValidUntilTime:          ValidUntilFrom(p.RecordedAt, validFor),
		MonitoredVehicleJourney: mvj,
		Extensions:              ext,
	}
}

// BuildVehicleMonitoring wraps activities into a VM delivery.
func BuildVehicleMonitoring(now time.Time, validFor time.Duration, activities []VehicleActivityEntry) VehicleMonitoring {
	if activities == nil {
		activities = []VehicleActivityEntry{}
	}
	return VehicleMonitoring{
		ResponseTimestamp: Iso8601(now),
		ValidUntil:        ValidUntilFrom(now, validFor),
		VehicleActivity:   activities,
	}
}
