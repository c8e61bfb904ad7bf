// Package turns holds the turn instructions attached to a route.
//
// Turn items are produced upstream by the turn-instruction generator; this
// package only describes them and provides the along-path helper the route
// document needs.
package turns

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/route-follower/mercator"
)

// TurnDirection is the manoeuvre at a turn point. Numeric values are part of
// the route document format.
type TurnDirection int

const (
	NoTurn TurnDirection = iota
	GoStraight
	TurnRight
	TurnSharpRight
	TurnSlightRight
	TurnLeft
	TurnSharpLeft
	TurnSlightLeft
	UTurnLeft
	UTurnRight
	TakeTheExit
	EnterRoundAbout
	LeaveRoundAbout
	StayOnRoundAbout
	StartAtEndOfStreet
	ReachedYourDestination
	turnDirectionCount
)

func (d TurnDirection) String() string {
	if d < 0 || d >= turnDirectionCount {
		return fmt.Sprintf("TurnDirection(%d)", int(d))
	}
	return [...]string{
		"NoTurn", "GoStraight", "TurnRight", "TurnSharpRight", "TurnSlightRight",
		"TurnLeft", "TurnSharpLeft", "TurnSlightLeft", "UTurnLeft", "UTurnRight",
		"TakeTheExit", "EnterRoundAbout", "LeaveRoundAbout", "StayOnRoundAbout",
		"StartAtEndOfStreet", "ReachedYourDestination",
	}[d]
}

// PedestrianDirection is the pedestrian-specific manoeuvre at a turn point.
type PedestrianDirection int

const (
	PedestrianNone PedestrianDirection = iota
	PedestrianUpstairs
	PedestrianDownstairs
	PedestrianLiftGate
	PedestrianGate
	PedestrianReachedYourDestination
	pedestrianDirectionCount
)

func (d PedestrianDirection) String() string {
	if d < 0 || d >= pedestrianDirectionCount {
		return fmt.Sprintf("PedestrianDirection(%d)", int(d))
	}
	return [...]string{"None", "Upstairs", "Downstairs", "LiftGate", "Gate", "ReachedYourDestination"}[d]
}

// TurnItem is a manoeuvre attached to a route point.
type TurnItem struct {
	Index               uint32 // route point index
	Direction           TurnDirection
	PedestrianDirection PedestrianDirection
	ExitNum             uint32 // roundabout exit, 0 when not applicable
	KeepAnyway          bool
	SourceName          string
	TargetName          string
}

func (t TurnItem) String() string {
	return fmt.Sprintf("TurnItem{index: %d, dir: %s, ped: %s, exit: %d, %q -> %q}",
		t.Index, t.Direction, t.PedestrianDirection, t.ExitNum, t.SourceName, t.TargetName)
}

// TurnItemDist is a turn together with the along-route distance to it.
type TurnItemDist struct {
	Turn       TurnItem
	DistMeters float64
}

// CalculateMercatorDistanceAlongPath sums the planar segment lengths between
// point indices start and end. Out of range indices are clamped; start >= end yields 0.
func CalculateMercatorDistanceAlongPath(start, end uint32, points orb.LineString) float64 {
	if len(points) == 0 {
		return 0
	}
	last := uint32(len(points) - 1)
	if end > last {
		end = last
	}
	var d float64
	for i := start; i < end; i++ {
		d += mercator.PlanarDistance(points[i], points[i+1])
	}
	return d
}
