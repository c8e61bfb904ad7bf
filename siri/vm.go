package siri

// VehicleMonitoring represents the VehicleMonitoring delivery
type VehicleMonitoring struct {
	ResponseTimestamp string                 `json:"ResponseTimestamp"`
	ValidUntil        string                 `json:"ValidUntil,omitempty"`
	VehicleActivity   []VehicleActivityEntry `json:"VehicleActivity"`
}

// VehicleActivityEntry represents a single vehicle's activity
type VehicleActivityEntry struct {
	RecordedAtTime          string                  `json:"RecordedAtTime"`
	ValidUntilTime          string                  `json:"ValidUntilTime,omitempty"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
	Extensions              *ActivityExtensions     `json:"Extensions,omitempty"`
}

// MonitoredVehicleJourney contains details about a monitored vehicle journey
type MonitoredVehicleJourney struct {
	LineRef                 string                   `json:"LineRef"`
	DirectionRef            string                   `json:"DirectionRef,omitempty"`
	FramedVehicleJourneyRef *FramedVehicleJourneyRef `json:"FramedVehicleJourneyRef,omitempty"`
	VehicleMode             string                   `json:"VehicleMode,omitempty"`
	PublishedLineName       string                   `json:"PublishedLineName,omitempty"`
	OperatorRef             string                   `json:"OperatorRef,omitempty"`
	OriginRef               string                   `json:"OriginRef,omitempty"`
	OriginName              string                   `json:"OriginName,omitempty"`
	DestinationRef          string                   `json:"DestinationRef,omitempty"`
	DestinationName         string                   `json:"DestinationName,omitempty"`
	Monitored               bool                     `json:"Monitored"`
	DataSource              string                   `json:"DataSource,omitempty"`
	VehicleLocation         *VehicleLocation         `json:"VehicleLocation,omitempty"`
	Bearing                 *float64                 `json:"Bearing,omitempty"`
	Velocity                *int                     `json:"Velocity,omitempty"` // km/h
	VehicleStatus           string                   `json:"VehicleStatus,omitempty"`
	VehicleRef              string                   `json:"VehicleRef"`
	MonitoredCall           *MonitoredCall           `json:"MonitoredCall,omitempty"`
	IsCompleteStopSequence  bool                     `json:"IsCompleteStopSequence"`
}

type FramedVehicleJourneyRef struct {
	DataFrameRef           string `json:"DataFrameRef"`
	DatedVehicleJourneyRef string `json:"DatedVehicleJourneyRef"`
}

// VehicleLocation represents the geographical location of a vehicle
type VehicleLocation struct {
	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`
}

// MonitoredCall is the next call of the vehicle along its route.
type MonitoredCall struct {
	StopPointRef       string `json:"StopPointRef,omitempty"`
	Order              *int   `json:"Order,omitempty"`
	StopPointName      string `json:"StopPointName,omitempty"`
	VehicleAtStop      *bool  `json:"VehicleAtStop,omitempty"`
	DestinationDisplay string `json:"DestinationDisplay,omitempty"`
}

// ActivityExtensions carries the route progress of a vehicle.
type ActivityExtensions struct {
	Distances   Distances `json:"Distances"`
	TimeToEnd   uint32    `json:"TimeToEnd"` // seconds
	RouteName   string    `json:"RouteName,omitempty"`
	StreetName  string    `json:"StreetName,omitempty"`
	AtRouteEnd  bool      `json:"AtRouteEnd"`
	MatchedFix  bool      `json:"MatchedFix"`
	CursorIndex int       `json:"CursorIndex"`
}

// Distances are metres along the route.
type Distances struct {
	DistanceFromBegin  float64  `json:"DistanceFromBegin"`
	DistanceToEnd      float64  `json:"DistanceToEnd"`
	RouteLength        float64  `json:"RouteLength"`
	DistanceToNextStop *float64 `json:"DistanceToNextStop,omitempty"`
}
