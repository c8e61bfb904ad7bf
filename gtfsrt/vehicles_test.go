package gtfsrt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

type entity struct {
	id, vehicle, trip string
	lat, lon          float32
	speed, bearing    *float32
	ts                uint64
}

func feedBytes(t *testing.T, headerTS uint64, entities ...entity) []byte {
	t.Helper()
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(headerTS),
		},
	}
	for _, e := range entities {
		vp := &gtfsrtpb.VehiclePosition{
			Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String(e.trip)},
			Position: &gtfsrtpb.Position{
				Latitude:  proto.Float32(e.lat),
				Longitude: proto.Float32(e.lon),
				Speed:     e.speed,
				Bearing:   e.bearing,
			},
		}
		if e.vehicle != "" {
			vp.Vehicle = &gtfsrtpb.VehicleDescriptor{Id: proto.String(e.vehicle)}
		}
		if e.ts != 0 {
			vp.Timestamp = proto.Uint64(e.ts)
		}
		fm.Entity = append(fm.Entity, &gtfsrtpb.FeedEntity{Id: proto.String(e.id), Vehicle: vp})
	}
	// an entity without a position is ignored
	fm.Entity = append(fm.Entity, &gtfsrtpb.FeedEntity{
		Id:      proto.String("no-position"),
		Vehicle: &gtfsrtpb.VehiclePosition{Vehicle: &gtfsrtpb.VehicleDescriptor{Id: proto.String("ghost")}},
	})

	b, err := proto.Marshal(fm)
	if err != nil {
		t.Fatalf("marshal feed: %v", err)
	}
	return b
}

func TestParseVehiclePositions(t *testing.T) {
	data := feedBytes(t, 1700000000,
		entity{id: "e1", vehicle: "bus-1", trip: "trip-1", lat: 42.5, lon: 23.25, speed: proto.Float32(8), bearing: proto.Float32(90), ts: 1699999990},
		entity{id: "e2", trip: "trip-2", lat: 42.75, lon: 23.5},
	)

	fixes, headerTS, err := ParseVehiclePositions(data, 15)
	if err != nil {
		t.Fatalf("ParseVehiclePositions: %v", err)
	}
	if headerTS != 1700000000 {
		t.Errorf("header timestamp = %d", headerTS)
	}
	if len(fixes) != 2 {
		t.Fatalf("got %d fixes, want 2", len(fixes))
	}

	bus := fixes[0]
	if bus.VehicleID != "bus-1" || bus.TripID != "trip-1" {
		t.Errorf("ids = %q/%q", bus.VehicleID, bus.TripID)
	}
	if bus.Fix.Latitude != 42.5 || bus.Fix.Longitude != 23.25 || bus.Fix.HorizontalAccuracy != 15 {
		t.Errorf("position = %+v", bus.Fix)
	}
	if bus.Fix.Speed != 8 || bus.Fix.Bearing != 90 || bus.Fix.Timestamp != 1699999990 {
		t.Errorf("speed/bearing/timestamp = %v/%v/%v", bus.Fix.Speed, bus.Fix.Bearing, bus.Fix.Timestamp)
	}

	anon := fixes[1]
	if anon.VehicleID != "e2" {
		t.Errorf("vehicle id should fall back to the entity id, got %q", anon.VehicleID)
	}
	if anon.Fix.HasSpeed() || anon.Fix.HasBearing() {
		t.Error("missing speed and bearing should stay unknown")
	}
	if anon.Fix.Timestamp != 1700000000 {
		t.Errorf("timestamp should fall back to the header, got %v", anon.Fix.Timestamp)
	}
}

func TestParseVehiclePositions_Garbage(t *testing.T) {
	if _, _, err := ParseVehiclePositions([]byte{0xff, 0xff, 0xff}, 10); err == nil {
		t.Error("expected an error for invalid protobuf")
	}
}

func TestFeed_Refresh(t *testing.T) {
	data := feedBytes(t, 1700000000,
		entity{id: "a", vehicle: "bus-2", lat: 1, lon: 1, ts: 1700000001},
		entity{id: "b", vehicle: "bus-1", lat: 2, lon: 2, ts: 1700000005},
		entity{id: "c", vehicle: "bus-1", lat: 3, lon: 3, ts: 1700000002},
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-protobuf")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, NewClient(time.Second), 20)
	if err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	fixes := f.Fixes()
	if len(fixes) != 2 || fixes[0].VehicleID != "bus-1" || fixes[1].VehicleID != "bus-2" {
		t.Fatalf("fixes = %+v", fixes)
	}
	bus1, ok := f.FixForVehicle("bus-1")
	if !ok || bus1.Fix.Latitude != 2 {
		t.Errorf("bus-1 should keep its newest fix, got %+v", bus1)
	}
	if f.HeaderTimestamp() != 1700000000 {
		t.Errorf("HeaderTimestamp = %d", f.HeaderTimestamp())
	}
}

func TestFeed_RefreshHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, NewClient(time.Second), 20)
	if err := f.Refresh(context.Background()); err == nil {
		t.Fatal("expected an error for a 503 response")
	}
	if len(f.Fixes()) != 0 {
		t.Error("failed refresh should not index anything")
	}
}

func TestClient_EmptyURL(t *testing.T) {
	data, err := NewClient(0).Fetch(context.Background(), "")
	if data != nil || err != nil {
		t.Errorf("Fetch(\"\") = %v, %v; want nil, nil", data, err)
	}
}
