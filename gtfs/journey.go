package gtfs

import "github.com/theoremus-urban-solutions/route-follower/siri"

// Journey describes a trip for SIRI VehicleMonitoring output.
func (g *Index) Journey(tripID, vehicleID string) (siri.Journey, bool) {
	info, ok := g.Trip(tripID)
	if !ok {
		return siri.Journey{}, false
	}
	dest := info.Headsign
	if dest == "" {
		dest = info.DestinationName
	}
	return siri.Journey{
		VehicleRef:      vehicleID,
		LineRef:         info.RouteID,
		LineName:        info.LineName,
		DirectionRef:    info.DirectionID,
		OperatorRef:     g.AgencyID,
		OriginRef:       info.OriginStopID,
		OriginName:      info.OriginName,
		DestinationRef:  info.DestinationID,
		DestinationName: dest,
		DatedJourneyRef: info.TripID,
		DataSource:      g.AgencyID,
	}, true
}
