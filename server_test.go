package routefollower

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/route-follower/mercator"
	"github.com/theoremus-urban-solutions/route-follower/route"
	"github.com/theoremus-urban-solutions/route-follower/siri"
	"github.com/theoremus-urban-solutions/route-follower/tracking"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	pts := orb.LineString{{0, 0}, {0, 50}, {0, 100}}
	r := route.New("test-router", pts, "north", route.CarSettings())
	r.SetSectionTimes([]route.TimeItem{{Index: 0, Seconds: 0}, {Index: 2, Seconds: 100}})

	tr := tracking.NewTracker(0)
	tr.Add(tracking.NewSession("bus-1", r, siri.Journey{LineRef: "L1"}))
	srv := NewServer(tr, Options{
		Codespace:     "RF",
		ValidFor:      time.Minute,
		FeedTimestamp: func() int64 { return 1234 },
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body []byte) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func postFix(t *testing.T, base string, x, y, ts float64) (int, fixResponse) {
	t.Helper()
	lat, lon := mercator.ToLatLon(orb.Point{x, y})
	body, _ := json.Marshal(map[string]float64{"latitude": lat, "longitude": lon, "accuracy": 5, "timestamp": ts})
	status, data := do(t, http.MethodPost, base+"/api/vehicles/bus-1/fixes", body)
	var res fixResponse
	if status == http.StatusOK {
		if err := json.Unmarshal(data, &res); err != nil {
			t.Fatalf("decode fix response: %v (%s)", err, data)
		}
	}
	return status, res
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	status, data := do(t, http.MethodGet, ts.URL+"/api/health", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var h healthResponse
	if err := json.Unmarshal(data, &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.LatestGTFSRealtimeEpoch != 1234 || h.Vehicles != 1 {
		t.Errorf("health = %+v", h)
	}
}

func TestFixAndProgress(t *testing.T) {
	ts := newTestServer(t)

	status, res := postFix(t, ts.URL, 4, 25, 1000)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !res.Matched || res.Progress.TimeToEndS != 75 {
		t.Errorf("fix response = %+v", res)
	}

	status, data := do(t, http.MethodGet, ts.URL+"/api/vehicles/bus-1/progress", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var p tracking.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatal(err)
	}
	if p.VehicleID != "bus-1" || !p.Matched || p.DistanceFromM < 24 || p.DistanceFromM > 26 {
		t.Errorf("progress = %+v", p)
	}

	if status, _ := do(t, http.MethodGet, ts.URL+"/api/vehicles", nil); status != http.StatusOK {
		t.Errorf("vehicles status = %d", status)
	}
}

func TestFixErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown vehicle", "/api/vehicles/nope/fixes", `{"latitude":0,"longitude":0}`, http.StatusNotFound},
		{"malformed", "/api/vehicles/bus-1/fixes", `{`, http.StatusBadRequest},
		{"missing longitude", "/api/vehicles/bus-1/fixes", `{"latitude":0}`, http.StatusBadRequest},
		{"latitude out of range", "/api/vehicles/bus-1/fixes", `{"latitude":91,"longitude":0}`, http.StatusBadRequest},
		{"negative speed", "/api/vehicles/bus-1/fixes", `{"latitude":0,"longitude":0,"speed":-2}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, data := do(t, http.MethodPost, ts.URL+tt.path, []byte(tt.body)); status != tt.status {
				t.Errorf("status = %d, want %d (%s)", status, tt.status, data)
			}
		})
	}
}

func TestRouteDocument(t *testing.T) {
	ts := newTestServer(t)

	status, doc := do(t, http.MethodGet, ts.URL+"/api/vehicles/bus-1/route", nil)
	if status != http.StatusOK || !strings.HasPrefix(string(doc), `{"points":`) || !strings.Contains(string(doc), `"name":"test-router"`) {
		t.Fatalf("GET route = %d %s", status, doc)
	}

	longer, err := route.New("other", orb.LineString{{0, 0}, {0, 300}}, "", route.CarSettings()).ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	status, data := do(t, http.MethodPut, ts.URL+"/api/vehicles/bus-1/route", longer)
	if status != http.StatusOK {
		t.Fatalf("PUT route = %d %s", status, data)
	}
	var p tracking.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatal(err)
	}
	if p.RouterID != "other" || p.RouteName != "north" || p.TotalDistanceM < 299 || p.TotalDistanceM > 301 {
		t.Errorf("progress after PUT = %+v", p)
	}

	if status, _ := do(t, http.MethodPut, ts.URL+"/api/vehicles/bus-1/route", []byte(`{"name":"x"}`)); status != http.StatusBadRequest {
		t.Errorf("invalid document status = %d", status)
	}
	if status, _ := do(t, http.MethodGet, ts.URL+"/api/vehicles/nope/route", nil); status != http.StatusNotFound {
		t.Errorf("unknown vehicle status = %d", status)
	}
}

func TestVehicleMonitoring(t *testing.T) {
	ts := newTestServer(t)
	postFix(t, ts.URL, 0, 40, 1000)

	status, data := do(t, http.MethodGet, ts.URL+"/api/siri/vehicle-monitoring.json?LineRef=l1", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var res siri.SiriResponse
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	sd := res.Siri.ServiceDelivery
	if sd.ProducerRef != "RF" || len(sd.VehicleMonitoringDelivery) != 1 {
		t.Fatalf("service delivery = %+v", sd)
	}
	if acts := sd.VehicleMonitoringDelivery[0].VehicleActivity; len(acts) != 1 || acts[0].MonitoredVehicleJourney.VehicleRef != "bus-1" {
		t.Errorf("activities = %+v", acts)
	}

	_, data = do(t, http.MethodGet, ts.URL+"/api/siri/vehicle-monitoring.json?vehicleref=other", nil)
	res = siri.SiriResponse{}
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if n := len(res.Siri.ServiceDelivery.VehicleMonitoringDelivery[0].VehicleActivity); n != 0 {
		t.Errorf("filtered activities = %d", n)
	}

	status, data = do(t, http.MethodGet, ts.URL+"/api/siri/vehicle-monitoring.xml", nil)
	if status != http.StatusOK || !strings.Contains(string(data), "<VehicleRef>bus-1</VehicleRef>") {
		t.Errorf("xml = %d %s", status, data)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	postFix(t, ts.URL, 0, 10, 1000)
	status, data := do(t, http.MethodGet, ts.URL+"/metrics", nil)
	if status != http.StatusOK || !strings.Contains(string(data), "routefollower_fixes_processed_total") {
		t.Errorf("metrics = %d", status)
	}
}
