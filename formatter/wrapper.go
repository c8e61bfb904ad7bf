package formatter

import (
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/route-follower/siri"
)

// BuildServiceDelivery creates a ServiceDelivery with ResponseTimestamp and ProducerRef (codespace)
func BuildServiceDelivery(now time.Time, codespace string) siri.ServiceDelivery {
	if codespace == "" {
		codespace = "UNKNOWN"
	}
	return siri.ServiceDelivery{
		ResponseTimestamp:         siri.Iso8601(now),
		ProducerRef:               codespace,
		VehicleMonitoringDelivery: []siri.VehicleMonitoring{},
	}
}

// WrapVehicleMonitoringResponse wraps a VM delivery in a complete SIRI response
func WrapVehicleMonitoringResponse(vm siri.VehicleMonitoring, now time.Time, codespace string) *siri.SiriResponse {
	sd := BuildServiceDelivery(now, codespace)
	sd.VehicleMonitoringDelivery = append(sd.VehicleMonitoringDelivery, vm)
	return &siri.SiriResponse{
		Siri: siri.SiriServiceDelivery{
			ServiceDelivery: sd,
		},
	}
}

// FilterVehicleMonitoring keeps activities matching lineRef (substring) and vehicleRef (exact).
// Both filters are case-insensitive; an empty filter matches everything.
func FilterVehicleMonitoring(vm siri.VehicleMonitoring, lineRef, vehicleRef string) siri.VehicleMonitoring {
	lineRef = strings.ToLower(strings.TrimSpace(lineRef))
	vehicleRef = strings.ToLower(strings.TrimSpace(vehicleRef))

	filtered := siri.VehicleMonitoring{
		ResponseTimestamp: vm.ResponseTimestamp,
		ValidUntil:        vm.ValidUntil,
		VehicleActivity:   []siri.VehicleActivityEntry{},
	}
	for _, va := range vm.VehicleActivity {
		mvj := va.MonitoredVehicleJourney
		if lineRef != "" && !strings.Contains(strings.ToLower(mvj.LineRef), lineRef) {
			continue
		}
		if vehicleRef != "" && strings.ToLower(mvj.VehicleRef) != vehicleRef {
			continue
		}
		filtered.VehicleActivity = append(filtered.VehicleActivity, va)
	}
	return filtered
}
