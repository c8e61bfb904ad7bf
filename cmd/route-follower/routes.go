package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/theoremus-urban-solutions/route-follower/config"
	"github.com/theoremus-urban-solutions/route-follower/gtfs"
	"github.com/theoremus-urban-solutions/route-follower/route"
	"github.com/theoremus-urban-solutions/route-follower/siri"
	"github.com/theoremus-urban-solutions/route-follower/tracking"
)

// buildSessions creates one session per configured route. GTFS indexes are
// shared between routes that use the same static feed.
func buildSessions(cfg config.AppConfig, tracker *tracking.Tracker) error {
	settings := route.SettingsFromConfig(cfg.Routing)
	indexes := map[string]*gtfs.Index{}

	for _, src := range cfg.Routes {
		var (
			r       *route.Route
			journey siri.Journey
			err     error
		)
		switch {
		case src.Document != "":
			r, err = routeFromDocument(src, settings)
			journey = siri.Journey{LineRef: src.Name, LineName: src.Name}
		default:
			idx, ok := indexes[src.GTFS.StaticPath]
			if !ok {
				idx, err = gtfs.LoadIndexCached(src.GTFS.StaticPath, src.GTFS.AgencyID, src.GTFS.IndexCachePath)
				if err != nil {
					return fmt.Errorf("route for %s: %w", src.VehicleID, err)
				}
				indexes[src.GTFS.StaticPath] = idx
			}
			r, err = idx.BuildRoute(src.GTFS.TripID, settings)
			journey, _ = idx.Journey(src.GTFS.TripID, src.VehicleID)
		}
		if err != nil {
			return fmt.Errorf("route for %s: %w", src.VehicleID, err)
		}
		tracker.Add(tracking.NewSession(src.VehicleID, r, journey))
		slog.Info("route loaded",
			"vehicle", src.VehicleID,
			"router", r.RouterID(),
			"name", r.Name(),
			"points", r.Cursor().Size(),
			"distance_m", r.TotalDistanceMeters())
	}
	return nil
}

func routeFromDocument(src config.RouteSource, settings route.Settings) (*route.Route, error) {
	data, err := os.ReadFile(src.Document)
	if err != nil {
		return nil, err
	}
	r := route.New("", nil, src.Name, settings)
	if err := r.FromJSON(data); err != nil {
		return nil, err
	}
	return r, nil
}
