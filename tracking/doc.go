// Package tracking follows vehicles along their routes.
//
// A Session owns one route.Route and its route.Matcher behind a read/write
// lock: position fixes and route replacement take the write lock, progress
// queries the read lock. A Tracker maps vehicle ids to sessions and applies
// GTFS-RT vehicle positions to them.
package tracking
