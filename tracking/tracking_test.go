package tracking

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/theoremus-urban-solutions/route-follower/gtfsrt"
	"github.com/theoremus-urban-solutions/route-follower/location"
	"github.com/theoremus-urban-solutions/route-follower/mercator"
	"github.com/theoremus-urban-solutions/route-follower/metrics"
	"github.com/theoremus-urban-solutions/route-follower/route"
	"github.com/theoremus-urban-solutions/route-follower/siri"
	"github.com/theoremus-urban-solutions/route-follower/turns"
)

const tolerance = 0.5

func almost(a, b float64) bool { return math.Abs(a-b) <= tolerance }

// testRoute runs 100 m north from the equator in 10 m steps and takes 100 s.
func testRoute() *route.Route {
	pts := make(orb.LineString, 11)
	for i := range pts {
		pts[i] = orb.Point{0, float64(i) * 10}
	}
	r := route.New("test-router", pts, "north", route.CarSettings())
	r.SetSectionTimes([]route.TimeItem{{Index: 0, Seconds: 0}, {Index: 10, Seconds: 100}})
	r.SetTurnInstructions([]turns.TurnItem{
		{Index: 5, Direction: turns.GoStraight, TargetName: "Mid"},
		{Index: 10, Direction: turns.ReachedYourDestination, TargetName: "End"},
	})
	r.SetStreetNames([]route.StreetItem{{Index: 0, Name: "Main"}})
	return r
}

func fixAt(x, y, ts float64) location.GpsInfo {
	lat, lon := mercator.ToLatLon(orb.Point{x, y})
	return location.NewGpsInfo(lat, lon, 5, ts)
}

func TestSession_ProcessFix(t *testing.T) {
	s := NewSession("bus-1", testRoute(), siri.Journey{LineRef: "L1"})
	before := testutil.ToFloat64(metrics.FixesSnappedTotal)

	matched, info := s.ProcessFix(fixAt(3, 42, 1000))
	if !info.IsMatched() || info.Index() != 4 {
		t.Fatalf("info = matched %v index %d", info.IsMatched(), info.Index())
	}
	if math.Abs(matched.Longitude) > 1e-9 {
		t.Errorf("fix not snapped: lon %v", matched.Longitude)
	}
	if got := testutil.ToFloat64(metrics.FixesSnappedTotal) - before; got != 1 {
		t.Errorf("snapped counter moved by %v", got)
	}

	p := s.Progress()
	if !p.HasFix || !p.Matched || p.CursorIndex != 4 || p.StreetName != "Main" {
		t.Fatalf("progress = %+v", p)
	}
	if !almost(p.DistanceFromM, 42) || !almost(p.DistanceToEndM, 58) || !almost(p.TotalDistanceM, 100) {
		t.Errorf("distances = %v / %v / %v", p.DistanceFromM, p.DistanceToEndM, p.TotalDistanceM)
	}
	if p.TimeToEndS != 58 || p.TotalTimeS != 100 {
		t.Errorf("times = %d / %d", p.TimeToEndS, p.TotalTimeS)
	}
	if p.CurrentTurn == nil || p.CurrentTurn.TargetName != "Mid" || !almost(p.CurrentTurn.DistanceM, 8) {
		t.Errorf("current turn = %+v", p.CurrentTurn)
	}
	if p.NextTurn == nil || p.NextTurn.Index != 10 {
		t.Errorf("next turn = %+v", p.NextTurn)
	}
	if p.AtEnd {
		t.Error("vehicle is not at the end")
	}
}

func TestSession_Advance(t *testing.T) {
	s := NewSession("bus-1", testRoute(), siri.Journey{})
	if _, ok := s.Advance(fixAt(0, 20, 100)); !ok {
		t.Fatal("first fix must be processed")
	}
	if _, ok := s.Advance(fixAt(0, 60, 100)); ok {
		t.Error("fix with the same timestamp must be skipped")
	}
	if _, ok := s.Advance(fixAt(0, 60, 90)); ok {
		t.Error("older fix must be skipped")
	}
	if !almost(s.Progress().DistanceFromM, 20) {
		t.Errorf("cursor moved by a skipped fix: %v", s.Progress().DistanceFromM)
	}
	if info, ok := s.Advance(fixAt(0, 30, 101)); !ok || !info.IsMatched() || !almost(s.Progress().DistanceFromM, 30) {
		t.Error("newer fix must move the cursor")
	}
}

func TestSession_Activity(t *testing.T) {
	s := NewSession("bus-1", testRoute(), siri.Journey{LineRef: "L1"})
	if _, ok := s.Activity(time.Minute); ok {
		t.Fatal("no activity expected before the first fix")
	}
	s.ProcessFix(fixAt(0, 42, 1000))

	a, ok := s.Activity(time.Minute)
	if !ok {
		t.Fatal("activity expected")
	}
	mvj := a.MonitoredVehicleJourney
	if mvj.VehicleRef != "bus-1" || mvj.LineRef != "L1" || !mvj.Monitored {
		t.Errorf("journey = %+v", mvj)
	}
	if a.RecordedAtTime != siri.Iso8601FromUnixSeconds(1000) {
		t.Errorf("RecordedAtTime = %q", a.RecordedAtTime)
	}
	if mvj.MonitoredCall == nil || mvj.MonitoredCall.StopPointName != "Mid" || *mvj.MonitoredCall.Order != 1 {
		t.Errorf("monitored call = %+v", mvj.MonitoredCall)
	}
	// Car routes take the route bearing: due north.
	if mvj.Bearing == nil || math.Min(*mvj.Bearing, 360-*mvj.Bearing) > tolerance {
		t.Errorf("bearing = %v", mvj.Bearing)
	}
	if a.Extensions.TimeToEnd != 58 {
		t.Errorf("TimeToEnd = %d", a.Extensions.TimeToEnd)
	}
}

func TestSession_Documents(t *testing.T) {
	src := NewSession("a", testRoute(), siri.Journey{})
	data, err := src.Document()
	if err != nil {
		t.Fatal(err)
	}

	dst := NewSession("b", route.New("", nil, "keep", route.PedestrianSettings()), siri.Journey{})
	dst.ProcessFix(fixAt(0, 0, 1))
	if err := dst.LoadDocument(data); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	p := dst.Progress()
	if !p.Valid || p.RouteName != "keep" || p.Matched || !almost(p.TotalDistanceM, 100) {
		t.Errorf("progress after load = %+v", p)
	}

	if err := dst.LoadDocument([]byte("not json")); !errors.Is(err, route.ErrInvalidDocument) {
		t.Errorf("LoadDocument error = %v", err)
	}
	if !dst.Progress().Valid {
		t.Error("a failed load must keep the route")
	}
}

func TestSession_ReplaceRoute(t *testing.T) {
	s := NewSession("a", testRoute(), siri.Journey{})
	s.ProcessFix(fixAt(0, 42, 1))
	s.ReplaceRoute(route.New("other", orb.LineString{{0, 0}, {0, 500}}, "long", route.CarSettings()))

	p := s.Progress()
	if p.Matched || p.RouterID != "other" || !almost(p.TotalDistanceM, 500) || p.CursorIndex != 0 {
		t.Errorf("progress after replace = %+v", p)
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker(time.Minute)
	tr.now = func() time.Time { return time.Unix(2000, 0) }
	tr.Add(NewSession("b", testRoute(), siri.Journey{}))
	tr.Add(NewSession("a", testRoute(), siri.Journey{}))

	if got := testutil.ToFloat64(metrics.TrackedVehicles); got != 2 {
		t.Errorf("tracked vehicles gauge = %v", got)
	}
	if _, err := tr.Session("zzz"); !errors.Is(err, ErrUnknownVehicle) {
		t.Errorf("Session(zzz) error = %v", err)
	}

	unknown := testutil.ToFloat64(metrics.FixesUnknownVehicleTotal)
	warnings := NewWarningAggregator()
	n := tr.apply([]gtfsrt.VehicleFix{
		{VehicleID: "a", Fix: fixAt(0, 30, 1990)},
		{VehicleID: "b", Fix: fixAt(0, 30, 1000)}, // stale
		{VehicleID: "zzz", Fix: fixAt(0, 30, 1990)},
	}, warnings)
	if n != 1 {
		t.Fatalf("Apply processed %d fixes, want 1", n)
	}
	if warnings.Count(WarningStaleFix) != 1 || warnings.Count(WarningUnknownVehicle) != 1 || warnings.Count(WarningOffRoute) != 0 {
		t.Errorf("warnings = %+v", warnings.warnings)
	}
	if got := testutil.ToFloat64(metrics.FixesUnknownVehicleTotal) - unknown; got != 1 {
		t.Errorf("unknown vehicle counter moved by %v", got)
	}
	if n := tr.Apply([]gtfsrt.VehicleFix{{VehicleID: "a", Fix: fixAt(0, 50, 1990)}}); n != 0 {
		t.Error("a repeated feed must not process the same fix twice")
	}

	sessions := tr.Sessions()
	if len(sessions) != 2 || sessions[0].VehicleID() != "a" {
		t.Fatalf("sessions not ordered: %v", sessions)
	}

	vm := tr.VehicleMonitoring(30 * time.Second)
	if len(vm.VehicleActivity) != 1 || vm.VehicleActivity[0].MonitoredVehicleJourney.VehicleRef != "a" {
		t.Errorf("VehicleActivity = %+v", vm.VehicleActivity)
	}
	if vm.ResponseTimestamp != siri.Iso8601FromUnixSeconds(2000) {
		t.Errorf("ResponseTimestamp = %q", vm.ResponseTimestamp)
	}

	if !tr.Remove("b") || tr.Remove("b") {
		t.Error("Remove must report whether the vehicle existed")
	}
	if got := testutil.ToFloat64(metrics.TrackedVehicles); got != 1 {
		t.Errorf("tracked vehicles gauge = %v", got)
	}
}

func TestTracker_OffRouteWarning(t *testing.T) {
	tr := NewTracker(0)
	tr.Add(NewSession("a", testRoute(), siri.Journey{}))
	warnings := NewWarningAggregator()
	if n := tr.apply([]gtfsrt.VehicleFix{{VehicleID: "a", Fix: fixAt(500, 500, 10)}}, warnings); n != 1 {
		t.Fatalf("applied %d", n)
	}
	if warnings.Count(WarningOffRoute) != 1 {
		t.Errorf("off route count = %d", warnings.Count(WarningOffRoute))
	}
	if tr.Remove("a") != true {
		t.Error("session a should exist")
	}
}

func TestWarningAggregatorExamples(t *testing.T) {
	w := NewWarningAggregator()
	for _, id := range []string{"a", "b", "c", "d"} {
		w.Add(WarningStaleFix, id)
	}
	info := w.warnings[WarningStaleFix]
	if info.count != 4 || len(info.examples) != maxWarningExamples {
		t.Errorf("info = %+v", info)
	}
	if w.Count(WarningOffRoute) != 0 {
		t.Error("unrecorded warning must count 0")
	}
}
