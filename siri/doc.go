// Package siri defines the SIRI VehicleMonitoring types published for followed vehicles.
//
// SIRI is a European standard (CEN/TS 15531) for real-time public transport
// information. Only the VehicleMonitoring (VM) delivery is produced here: one
// VehicleActivity per vehicle, built from its route progress. Route progress
// that SIRI has no element for travels in the activity Extensions.
//
// All types carry JSON tags; XML is written by the formatter package.
package siri
