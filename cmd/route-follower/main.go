package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	routefollower "github.com/theoremus-urban-solutions/route-follower"
	"github.com/theoremus-urban-solutions/route-follower/config"
	"github.com/theoremus-urban-solutions/route-follower/formatter"
	"github.com/theoremus-urban-solutions/route-follower/gtfsrt"
	"github.com/theoremus-urban-solutions/route-follower/internal/logger"
	"github.com/theoremus-urban-solutions/route-follower/tracking"
)

func main() {
	mode := flag.String("mode", "oneshot", "oneshot|serve")
	format := flag.String("format", "json", "json|xml (oneshot output)")
	configPath := flag.String("config", os.Getenv("ROUTE_FOLLOWER_CONFIG"), "path to config.yml")
	positions := flag.String("positions", "", "comma-separated VehiclePositions URLs or files replayed in order (oneshot, overrides config)")
	lineRef := flag.String("lineRef", "", "LineRef filter (oneshot)")
	vehicleRef := flag.String("vehicleRef", "", "VehicleRef filter (oneshot)")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()
	logger.Setup()

	if err := loadConfig(*configPath); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	cfg := config.Config
	if *vehicleRef != "" {
		if _, ok := config.FindRoute(*vehicleRef); !ok {
			slog.Error("no route configured for vehicle", "vehicle", *vehicleRef)
			os.Exit(2)
		}
	}

	// Replayed feeds are historical, so staleness only applies when serving.
	staleAfter := time.Duration(cfg.Feed.StaleAfterS) * time.Second
	if *mode != "serve" {
		staleAfter = 0
	}
	tracker := tracking.NewTracker(staleAfter)
	if err := buildSessions(cfg, tracker); err != nil {
		slog.Error("routes", "error", err)
		os.Exit(1)
	}
	client := gtfsrt.NewClient(time.Duration(cfg.Feed.TimeoutMS) * time.Millisecond)
	validFor := time.Duration(cfg.Feed.ReadIntervalMS) * time.Millisecond

	switch *mode {
	case "oneshot":
		sources := []string{cfg.Feed.VehiclePositionsURL}
		if *positions != "" {
			sources = strings.Split(*positions, ",")
		}
		if err := replay(context.Background(), newFetcher(client), tracker, sources, cfg.Feed.DefaultAccuracyM); err != nil {
			slog.Error("replay", "error", err)
			os.Exit(1)
		}
		vm := formatter.FilterVehicleMonitoring(tracker.VehicleMonitoring(validFor), *lineRef, *vehicleRef)
		res := formatter.WrapVehicleMonitoringResponse(vm, time.Now(), cfg.Server.Codespace)
		rb := formatter.NewResponseBuilder()
		var buf []byte
		if *format == "xml" {
			buf = rb.BuildXML(res)
		} else {
			var err error
			if buf, err = rb.BuildJSON(res); err != nil {
				slog.Error("encode", "error", err)
				os.Exit(1)
			}
		}
		fmt.Println(string(buf))
	case "serve":
		feed := gtfsrt.NewFeed(cfg.Feed.VehiclePositionsURL, client, cfg.Feed.DefaultAccuracyM)
		srv := routefollower.NewServer(tracker, routefollower.Options{
			Port:          cfg.Server.Port,
			Codespace:     cfg.Server.Codespace,
			ValidFor:      validFor,
			FeedTimestamp: feed.HeaderTimestamp,
		})
		ctx, cancel := context.WithCancel(context.Background())
		if cfg.Feed.VehiclePositionsURL != "" {
			go poll(ctx, feed, tracker, validFor)
		} else {
			slog.Warn("no vehiclePositionsURL configured; fixes are accepted over HTTP only")
		}
		srv.Start()
		srv.WaitForShutdown(cancel)
	default:
		slog.Error("unknown mode", "mode", *mode)
		os.Exit(2)
	}
}

func loadConfig(path string) error {
	if path != "" {
		return config.LoadAppConfigFrom(path)
	}
	return config.LoadAppConfig()
}

// replay loads each feed in turn and applies its positions to the tracker.
func replay(ctx context.Context, f *fetcher, tracker *tracking.Tracker, sources []string, defaultAccuracyM float64) error {
	for _, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		data, err := f.fetch(ctx, src)
		if err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}
		fixes, _, err := gtfsrt.ParseVehiclePositions(data, defaultAccuracyM)
		if err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}
		applied := tracker.Apply(fixes)
		slog.Info("feed replayed", "source", src, "fixes", len(fixes), "applied", applied)
	}
	return nil
}

// poll refreshes the feed every interval and applies it until ctx is done.
func poll(ctx context.Context, feed *gtfsrt.Feed, tracker *tracking.Tracker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := feed.Refresh(ctx); err != nil {
			slog.Warn("feed refresh failed", "error", err)
		} else {
			applied := tracker.Apply(feed.Fixes())
			slog.Debug("feed applied", "applied", applied, "header_ts", feed.HeaderTimestamp())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
