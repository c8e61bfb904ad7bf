// Package gtfsrt turns GTFS-Realtime VehiclePositions feeds into position fixes.
//
// A Feed fetches the protobuf feed over HTTP (or takes raw bytes), decodes
// it and indexes the latest fix of every vehicle. Fixes carry the feed
// coordinates, speed and bearing when present, and the vehicle timestamp
// (falling back to the feed header timestamp).
package gtfsrt
