package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/route-follower/siri"
)

func sampleVM() siri.VehicleMonitoring {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := siri.BuildVehicleActivity(siri.Journey{VehicleRef: "bus-7", LineRef: "L1", DestinationName: "A & B"},
		siri.Progress{RecordedAt: now, HasPosition: true, Latitude: 1, Longitude: 2, Bearing: -1, Speed: 5, Matched: true,
			DistanceToEndM: 12.34, RouteLengthM: 100, HasNextStop: true, NextStopName: "<Stop>", NextStopOrder: 1, NextStopDistanceM: 50}, 0)
	b := siri.BuildVehicleActivity(siri.Journey{VehicleRef: "tram-2", LineRef: "T9"},
		siri.Progress{RecordedAt: now, Bearing: -1, Speed: -1}, 0)
	return siri.BuildVehicleMonitoring(now, time.Minute, []siri.VehicleActivityEntry{a, b})
}

func TestWrapAndJSON(t *testing.T) {
	res := WrapVehicleMonitoringResponse(sampleVM(), time.Unix(0, 0), "")
	if res.Siri.ServiceDelivery.ProducerRef != "UNKNOWN" {
		t.Fatalf("ProducerRef = %q", res.Siri.ServiceDelivery.ProducerRef)
	}
	data, err := NewResponseBuilder().BuildJSON(res)
	if err != nil {
		t.Fatal(err)
	}
	var back siri.SiriResponse
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	vms := back.Siri.ServiceDelivery.VehicleMonitoringDelivery
	if len(vms) != 1 || len(vms[0].VehicleActivity) != 2 {
		t.Fatalf("unexpected delivery: %+v", vms)
	}
}

func TestBuildXML(t *testing.T) {
	res := WrapVehicleMonitoringResponse(sampleVM(), time.Unix(0, 0), "RF")
	xml := string(NewResponseBuilder().BuildXML(res))

	for _, want := range []string{
		`<Siri xmlns="http://www.siri.org.uk/siri"><ServiceDelivery>`,
		"<ProducerRef>RF</ProducerRef>",
		"<Velocity>18</Velocity>",
		"<StopPointName>&lt;Stop&gt;</StopPointName>",
		"<DestinationDisplay>A &amp; B</DestinationDisplay>",
		"<DistanceToEnd>12.3</DistanceToEnd>",
		"<VehicleAtStop>false</VehicleAtStop>",
		"<Latitude>1.000000</Latitude><Longitude>2.000000</Longitude>",
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("missing %q in %s", want, xml)
		}
	}
	if strings.Contains(xml, "<Bearing>") {
		t.Error("unknown bearing must be omitted")
	}
	if strings.Index(xml, "<VehicleRef>bus-7") > strings.Index(xml, "<MonitoredCall>") {
		t.Error("VehicleRef must precede MonitoredCall")
	}
}

func TestFilterVehicleMonitoring(t *testing.T) {
	vm := sampleVM()
	if got := FilterVehicleMonitoring(vm, "", ""); len(got.VehicleActivity) != 2 {
		t.Fatalf("no filter kept %d", len(got.VehicleActivity))
	}
	got := FilterVehicleMonitoring(vm, " t9 ", "")
	if len(got.VehicleActivity) != 1 || got.VehicleActivity[0].MonitoredVehicleJourney.VehicleRef != "tram-2" {
		t.Fatalf("line filter = %+v", got.VehicleActivity)
	}
	if got := FilterVehicleMonitoring(vm, "", "BUS-7"); len(got.VehicleActivity) != 1 {
		t.Fatalf("vehicle filter kept %d", len(got.VehicleActivity))
	}
	if got := FilterVehicleMonitoring(vm, "", "bus"); len(got.VehicleActivity) != 0 {
		t.Fatal("vehicle filter must match exactly")
	}
}
