package gtfsrt

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/route-follower/location"
	"github.com/theoremus-urban-solutions/route-follower/metrics"
)

// VehicleFix is the position of one vehicle taken from a feed entity.
type VehicleFix struct {
	VehicleID string
	TripID    string
	Fix       location.GpsInfo
}

// ParseVehiclePositions decodes a FeedMessage and returns one fix per entity
// carrying a vehicle position, together with the header timestamp.
// defaultAccuracyM is used as the horizontal accuracy, the feed has none.
func ParseVehiclePositions(data []byte, defaultAccuracyM float64) ([]VehicleFix, int64, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(data, &fm); err != nil {
		return nil, 0, fmt.Errorf("failed to decode feed message: %w", err)
	}

	headerTS := int64(fm.GetHeader().GetTimestamp())
	fixes := make([]VehicleFix, 0, len(fm.Entity))
	for _, e := range fm.Entity {
		vp := e.GetVehicle()
		if vp == nil || vp.Position == nil {
			continue
		}
		vehicleID := vp.GetVehicle().GetId()
		if vehicleID == "" {
			vehicleID = e.GetId()
		}
		if vehicleID == "" {
			continue
		}

		ts := int64(vp.GetTimestamp())
		if ts == 0 {
			ts = headerTS
		}
		pos := vp.Position
		fix := location.NewGpsInfo(float64(pos.GetLatitude()), float64(pos.GetLongitude()), defaultAccuracyM, float64(ts))
		if pos.Speed != nil {
			fix.Speed = float64(*pos.Speed)
		}
		if pos.Bearing != nil {
			fix.Bearing = float64(*pos.Bearing)
		}

		fixes = append(fixes, VehicleFix{
			VehicleID: vehicleID,
			TripID:    vp.GetTrip().GetTripId(),
			Fix:       fix,
		})
	}
	return fixes, headerTS, nil
}

// Feed keeps the latest vehicle positions of one VehiclePositions feed.
type Feed struct {
	url              string
	client           *Client
	defaultAccuracyM float64

	mu              sync.RWMutex
	byVehicle       map[string]VehicleFix
	headerTimestamp int64
}

func NewFeed(url string, client *Client, defaultAccuracyM float64) *Feed {
	return &Feed{
		url:              url,
		client:           client,
		defaultAccuracyM: defaultAccuracyM,
		byVehicle:        map[string]VehicleFix{},
	}
}

// Refresh fetches the feed and replaces the indexed positions.
func (f *Feed) Refresh(ctx context.Context) error {
	start := time.Now()
	data, err := f.client.Fetch(ctx, f.url)
	metrics.FeedFetchDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.FeedFetchTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("vehicle positions: %w", err)
	}
	if err := f.Load(data); err != nil {
		metrics.FeedFetchTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("vehicle positions: %w", err)
	}
	metrics.FeedFetchTotal.WithLabelValues("ok").Inc()
	return nil
}

// Load indexes raw feed bytes. A vehicle listed twice keeps its newest fix.
func (f *Feed) Load(data []byte) error {
	fixes, headerTS, err := ParseVehiclePositions(data, f.defaultAccuracyM)
	if err != nil {
		return err
	}
	byVehicle := make(map[string]VehicleFix, len(fixes))
	for _, vf := range fixes {
		if prev, ok := byVehicle[vf.VehicleID]; ok && prev.Fix.Timestamp > vf.Fix.Timestamp {
			continue
		}
		byVehicle[vf.VehicleID] = vf
	}
	if headerTS == 0 {
		headerTS = time.Now().Unix()
	}

	f.mu.Lock()
	f.byVehicle = byVehicle
	f.headerTimestamp = headerTS
	f.mu.Unlock()

	slog.Debug("vehicle positions loaded", "vehicles", len(byVehicle), "header_ts", headerTS)
	return nil
}

// Fixes returns the indexed fixes ordered by vehicle id.
func (f *Feed) Fixes() []VehicleFix {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]VehicleFix, 0, len(f.byVehicle))
	for _, vf := range f.byVehicle {
		out = append(out, vf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}

func (f *Feed) FixForVehicle(vehicleID string) (VehicleFix, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	vf, ok := f.byVehicle[vehicleID]
	return vf, ok
}

func (f *Feed) HeaderTimestamp() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.headerTimestamp
}
