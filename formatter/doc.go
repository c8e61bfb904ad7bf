// Package formatter wraps VehicleMonitoring deliveries into SIRI responses and serializes them.
//
// This package is organized into:
// - wrapper.go: ServiceDelivery wrapping and filtering
// - json.go: JSON serialization
// - xml.go: XML serialization with proper escaping
//
// XML is written by hand so element order follows the SIRI schema exactly.
package formatter
