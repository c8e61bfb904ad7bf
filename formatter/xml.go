package formatter

import (
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/route-follower/siri"
)

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

// BuildXML serializes a SIRI response to XML
func (rb *responseBuilder) BuildXML(res *siri.SiriResponse) []byte {
	var b strings.Builder
	b.WriteString("<Siri xmlns=\"http://www.siri.org.uk/siri\">")
	sd := res.Siri.ServiceDelivery
	b.WriteString("<ServiceDelivery>")
	writeText(&b, "ResponseTimestamp", sd.ResponseTimestamp)
	writeText(&b, "ProducerRef", sd.ProducerRef)
	for _, vm := range sd.VehicleMonitoringDelivery {
		writeVehicleMonitoringXML(&b, vm)
	}
	b.WriteString("</ServiceDelivery>")
	b.WriteString("</Siri>")
	return []byte(b.String())
}

func writeVehicleMonitoringXML(b *strings.Builder, vm siri.VehicleMonitoring) {
	b.WriteString("<VehicleMonitoringDelivery>")
	writeText(b, "ResponseTimestamp", vm.ResponseTimestamp)
	writeText(b, "ValidUntil", vm.ValidUntil)
	for _, va := range vm.VehicleActivity {
		b.WriteString("<VehicleActivity>")
		writeText(b, "RecordedAtTime", va.RecordedAtTime)
		writeText(b, "ValidUntilTime", va.ValidUntilTime)
		writeMVJXML(b, va.MonitoredVehicleJourney)
		if va.Extensions != nil {
			writeExtensionsXML(b, *va.Extensions)
		}
		b.WriteString("</VehicleActivity>")
	}
	b.WriteString("</VehicleMonitoringDelivery>")
}

func writeMVJXML(b *strings.Builder, mvj siri.MonitoredVehicleJourney) {
	b.WriteString("<MonitoredVehicleJourney>")
	writeText(b, "LineRef", mvj.LineRef)
	writeText(b, "DirectionRef", mvj.DirectionRef)
	if fr := mvj.FramedVehicleJourneyRef; fr != nil {
		b.WriteString("<FramedVehicleJourneyRef>")
		writeText(b, "DataFrameRef", fr.DataFrameRef)
		writeText(b, "DatedVehicleJourneyRef", fr.DatedVehicleJourneyRef)
		b.WriteString("</FramedVehicleJourneyRef>")
	}
	writeText(b, "VehicleMode", mvj.VehicleMode)
	writeText(b, "PublishedLineName", mvj.PublishedLineName)
	writeText(b, "OperatorRef", mvj.OperatorRef)
	writeText(b, "OriginRef", mvj.OriginRef)
	writeText(b, "OriginName", mvj.OriginName)
	writeText(b, "DestinationRef", mvj.DestinationRef)
	writeText(b, "DestinationName", mvj.DestinationName)
	writeBool(b, "Monitored", mvj.Monitored)
	writeText(b, "DataSource", mvj.DataSource)
	if loc := mvj.VehicleLocation; loc != nil && (loc.Latitude != nil || loc.Longitude != nil) {
		b.WriteString("<VehicleLocation>")
		if loc.Latitude != nil {
			writeRaw(b, "Latitude", strconv.FormatFloat(*loc.Latitude, 'f', 6, 64))
		}
		if loc.Longitude != nil {
			writeRaw(b, "Longitude", strconv.FormatFloat(*loc.Longitude, 'f', 6, 64))
		}
		b.WriteString("</VehicleLocation>")
	}
	if mvj.Bearing != nil {
		writeRaw(b, "Bearing", strconv.FormatFloat(*mvj.Bearing, 'f', 2, 64))
	}
	if mvj.Velocity != nil {
		writeRaw(b, "Velocity", strconv.Itoa(*mvj.Velocity))
	}
	writeText(b, "VehicleStatus", mvj.VehicleStatus)
	writeText(b, "VehicleRef", mvj.VehicleRef)
	if mc := mvj.MonitoredCall; mc != nil {
		b.WriteString("<MonitoredCall>")
		writeText(b, "StopPointRef", mc.StopPointRef)
		if mc.Order != nil {
			writeRaw(b, "Order", strconv.Itoa(*mc.Order))
		}
		writeText(b, "StopPointName", mc.StopPointName)
		if mc.VehicleAtStop != nil {
			writeBool(b, "VehicleAtStop", *mc.VehicleAtStop)
		}
		writeText(b, "DestinationDisplay", mc.DestinationDisplay)
		b.WriteString("</MonitoredCall>")
	}
	writeBool(b, "IsCompleteStopSequence", mvj.IsCompleteStopSequence)
	b.WriteString("</MonitoredVehicleJourney>")
}

func writeExtensionsXML(b *strings.Builder, ext siri.ActivityExtensions) {
	b.WriteString("<Extensions>")
	b.WriteString("<Distances>")
	writeRaw(b, "DistanceFromBegin", formatMeters(ext.Distances.DistanceFromBegin))
	writeRaw(b, "DistanceToEnd", formatMeters(ext.Distances.DistanceToEnd))
	writeRaw(b, "RouteLength", formatMeters(ext.Distances.RouteLength))
	if ext.Distances.DistanceToNextStop != nil {
		writeRaw(b, "DistanceToNextStop", formatMeters(*ext.Distances.DistanceToNextStop))
	}
	b.WriteString("</Distances>")
	writeRaw(b, "TimeToEnd", strconv.FormatUint(uint64(ext.TimeToEnd), 10))
	writeText(b, "RouteName", ext.RouteName)
	writeText(b, "StreetName", ext.StreetName)
	writeBool(b, "AtRouteEnd", ext.AtRouteEnd)
	writeBool(b, "MatchedFix", ext.MatchedFix)
	writeRaw(b, "CursorIndex", strconv.Itoa(ext.CursorIndex))
	b.WriteString("</Extensions>")
}

func formatMeters(m float64) string {
	return strconv.FormatFloat(m, 'f', 1, 64)
}

// writeText writes an escaped element, skipping empty values.
func writeText(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	writeRaw(b, name, xmlEscape(value))
}

func writeRaw(b *strings.Builder, name, value string) {
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(value)
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

func writeBool(b *strings.Builder, name string, v bool) {
	writeRaw(b, name, strconv.FormatBool(v))
}

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
