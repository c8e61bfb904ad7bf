// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// It carries the routing profile used by the location matcher, the GTFS-RT
// positioning feed and the routes to follow, keyed by vehicle id.
package config
