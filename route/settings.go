package route

import (
	"github.com/theoremus-urban-solutions/route-follower/config"
	"github.com/theoremus-urban-solutions/route-follower/polyline"
)

// Settings controls how fixes are matched to the route.
type Settings struct {
	// MatchRoute replaces the bearing of a matched fix with the route bearing.
	MatchRoute bool
	// SnapToRoute replaces the coordinates of a matched fix with the projected point.
	SnapToRoute bool
	// MatchingThresholdM is the largest fix-to-route distance that still counts as on route.
	MatchingThresholdM float64
	// KeepPedestrianInfo builds the simplified polyline used for the direction pointer.
	KeepPedestrianInfo bool
	SimplifyToleranceM float64
	HysteresisM        float64
}

func CarSettings() Settings {
	return Settings{
		MatchRoute:         true,
		SnapToRoute:        true,
		MatchingThresholdM: 50,
		KeepPedestrianInfo: false,
		SimplifyToleranceM: 10,
		HysteresisM:        polyline.DefaultHysteresisM,
	}
}

func PedestrianSettings() Settings {
	return Settings{
		MatchRoute:         false,
		SnapToRoute:        true,
		MatchingThresholdM: 20,
		KeepPedestrianInfo: true,
		SimplifyToleranceM: 10,
		HysteresisM:        polyline.DefaultHysteresisM,
	}
}

// SettingsFromConfig starts from the profile defaults and applies every value set in cfg.
func SettingsFromConfig(cfg config.RoutingConfig) Settings {
	s := CarSettings()
	if cfg.Profile == "pedestrian" {
		s = PedestrianSettings()
	}
	if cfg.MatchingThresholdM > 0 {
		s.MatchingThresholdM = cfg.MatchingThresholdM
	}
	if cfg.MatchRoute != nil {
		s.MatchRoute = *cfg.MatchRoute
	}
	if cfg.SnapToRoute != nil {
		s.SnapToRoute = *cfg.SnapToRoute
	}
	if cfg.KeepPedestrianInfo != nil {
		s.KeepPedestrianInfo = *cfg.KeepPedestrianInfo
	}
	if cfg.SimplifyToleranceM > 0 {
		s.SimplifyToleranceM = cfg.SimplifyToleranceM
	}
	if cfg.HysteresisM != nil {
		s.HysteresisM = *cfg.HysteresisM
	}
	return s
}
