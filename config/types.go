package config

// ServerConfig contains server configuration
type ServerConfig struct {
	Port      int    `yaml:"port" validate:"gte=0"`
	Codespace string `yaml:"codespace"`
}

// RoutingConfig controls how fixes are matched to a route
type RoutingConfig struct {
	Profile            string   `yaml:"profile" validate:"omitempty,oneof=car pedestrian"`
	MatchingThresholdM float64  `yaml:"matchingThresholdM" validate:"gte=0"`
	MatchRoute         *bool    `yaml:"matchRoute"`
	SnapToRoute        *bool    `yaml:"snapToRoute"`
	KeepPedestrianInfo *bool    `yaml:"keepPedestrianInfo"`
	SimplifyToleranceM float64  `yaml:"simplifyToleranceM" validate:"gte=0"`
	HysteresisM        *float64 `yaml:"hysteresisM" validate:"omitempty,gte=0"`
}

// FeedConfig contains the GTFS-Realtime positioning feed configuration
type FeedConfig struct {
	VehiclePositionsURL string  `yaml:"vehiclePositionsURL" validate:"omitempty"`
	ReadIntervalMS      int     `yaml:"readIntervalMS" validate:"gte=0"`
	TimeoutMS           int     `yaml:"timeoutMS" validate:"gte=0"`
	DefaultAccuracyM    float64 `yaml:"defaultAccuracyM" validate:"gte=0"`
	StaleAfterS         int     `yaml:"staleAfterS" validate:"gte=0"`
}

// GTFSRouteConfig builds a route from a GTFS static zip
type GTFSRouteConfig struct {
	StaticPath     string `yaml:"staticPath" validate:"required"`
	TripID         string `yaml:"tripId" validate:"required"`
	AgencyID       string `yaml:"agencyId"`
	IndexCachePath string `yaml:"indexCachePath"`
}

// RouteSource is a route to follow for one vehicle, from a route document or a GTFS trip
type RouteSource struct {
	VehicleID string           `yaml:"vehicleId" validate:"required"`
	Name      string           `yaml:"name"`
	Document  string           `yaml:"document" validate:"required_without=GTFS"`
	GTFS      *GTFSRouteConfig `yaml:"gtfs" validate:"required_without=Document"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Routing RoutingConfig `yaml:"routing"`
	Feed    FeedConfig    `yaml:"feed"`
	Routes  []RouteSource `yaml:"routes" validate:"dive"`
}
