/*
Package gtfs loads GTFS static data and builds followable routes from trips.

The index is data-source agnostic: it is built from raw zip bytes, an
io.ReaderAt or a local zip file, and keeps only what route building and SIRI
output need (trips, stop times, stops, shapes, routes and the agency).

# Building a route

	index, err := gtfs.NewIndexFromFile("gtfs.zip", "AGENCY")
	if err != nil {
	    log.Fatal(err)
	}
	r, err := index.BuildRoute("trip_123", route.CarSettings())

The route geometry is the trip shape, or the stop coordinates when the trip
has no shape. Every stop is snapped to the nearest shape point (never going
backwards) and contributes:

  - a time checkpoint with the scheduled seconds since the first stop
  - a street entry named after the stop
  - a turn item (the last stop is the destination)

# Caching

Parsing a large feed takes seconds. LoadIndexCached keeps a gob encoded copy
of the index next to the feed and reuses it on the next start.
*/
package gtfs
