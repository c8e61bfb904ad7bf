// Package mercator is the projected plane routes live in.
//
// Route geometry is stored as spherical web-mercator coordinates in metres
// (orb/project). Distances reported to users are great-circle metres computed
// on the unprojected points (orb/geo), while planar helpers (orb/planar,
// orb/simplify) operate directly on the projected coordinates.
package mercator
