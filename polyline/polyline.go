// Package polyline tracks an agent's position along a route polyline.
//
// A Polyline owns the route points and a cursor (Iter) that marks the current
// place on the route. Distances are great-circle metres measured along the
// polyline. Only the owner of the *Polyline can move the cursor; progress code
// reads it through the Cursor interface.
package polyline

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/route-follower/mercator"
)

// DefaultHysteresisM is how far behind the cursor a projection may land
// before it is treated as a backward move.
const DefaultHysteresisM = 5.0

// Iter is a position on the polyline: Point lies on the segment that starts at Index.
type Iter struct {
	Point orb.Point
	Index int
	valid bool
}

// NewIter returns a valid position at p on the segment starting at index.
func NewIter(p orb.Point, index int) Iter { return Iter{Point: p, Index: index, valid: true} }

func (it Iter) IsValid() bool { return it.valid }

// Cursor is the read-only view of a Polyline.
type Cursor interface {
	IsValid() bool
	Size() int
	Point(i int) orb.Point
	Points() orb.LineString
	Current() Iter
	IterToIndex(i int) Iter
	TotalDistanceM() float64
	DistanceFromBeginM() float64
	DistanceToEndM() float64
	DistanceM(a, b Iter) float64
	MercatorDistanceFromBegin() float64
	CurrentDirectionPoint(toleranceM float64) (orb.Point, bool)
}

var _ Cursor = (*Polyline)(nil)

type Polyline struct {
	points      orb.LineString
	cumM        []float64 // great-circle metres from point 0 to point i
	cumMercator []float64 // planar length from point 0 to point i
	current     Iter
	hysteresisM float64
}

// New builds a polyline with the cursor at the first point.
func New(points orb.LineString) *Polyline {
	p := &Polyline{
		points:      points.Clone(),
		cumM:        make([]float64, len(points)),
		cumMercator: make([]float64, len(points)),
		hysteresisM: DefaultHysteresisM,
	}
	for i := 1; i < len(points); i++ {
		p.cumM[i] = p.cumM[i-1] + mercator.DistanceOnEarth(points[i-1], points[i])
		p.cumMercator[i] = p.cumMercator[i-1] + mercator.PlanarDistance(points[i-1], points[i])
	}
	if len(points) > 0 {
		p.current = NewIter(points[0], 0)
	}
	return p
}

// SetHysteresisM sets how far back a projection may land before it counts
// as moving backwards. Negative values are treated as 0.
func (p *Polyline) SetHysteresisM(m float64) {
	if m < 0 {
		m = 0
	}
	p.hysteresisM = m
}

// IsValid reports whether the polyline has at least one segment and a cursor.
func (p *Polyline) IsValid() bool { return p.current.valid && len(p.points) > 1 }

// Size is the number of route points.
func (p *Polyline) Size() int { return len(p.points) }

// Point returns route point i; i must be in range.
func (p *Polyline) Point(i int) orb.Point { return p.points[i] }

func (p *Polyline) Points() orb.LineString { return p.points }

// Current is the cursor.
func (p *Polyline) Current() Iter { return p.current }

// Swap exchanges points and cursor with other.
func (p *Polyline) Swap(other *Polyline) { *p, *other = *other, *p }

func (p *Polyline) String() string { return fmt.Sprintf("Polyline{points: %d, cursor: %d}", len(p.points), p.current.Index) }

// IterToIndex returns an iterator positioned exactly on point i.
func (p *Polyline) IterToIndex(i int) Iter {
	if i < 0 || i >= len(p.points) {
		return Iter{}
	}
	return NewIter(p.points[i], i)
}

func (p *Polyline) TotalDistanceM() float64 {
	if !p.IsValid() {
		return 0
	}
	return p.cumM[len(p.cumM)-1]
}

func (p *Polyline) DistanceFromBeginM() float64 {
	if !p.IsValid() {
		return 0
	}
	return p.fromBegin(p.current)
}

func (p *Polyline) DistanceToEndM() float64 {
	if !p.IsValid() {
		return 0
	}
	return p.TotalDistanceM() - p.fromBegin(p.current)
}

// DistanceM is the along-route distance between two positions, in either order.
func (p *Polyline) DistanceM(a, b Iter) float64 {
	if !p.IsValid() || !p.inRange(a) || !p.inRange(b) {
		return 0
	}
	return math.Abs(p.fromBegin(b) - p.fromBegin(a))
}

// MercatorDistanceFromBegin is the planar length from the first point to the cursor.
func (p *Polyline) MercatorDistanceFromBegin() float64 {
	if !p.IsValid() {
		return 0
	}
	i := p.current.Index
	return p.cumMercator[i] + mercator.PlanarDistance(p.points[i], p.current.Point)
}

// CurrentDirectionPoint returns the first vertex ahead of the cursor that is
// farther than toleranceM from it, or the last point when none is.
func (p *Polyline) CurrentDirectionPoint(toleranceM float64) (orb.Point, bool) {
	if !p.IsValid() {
		return orb.Point{}, false
	}
	last := len(p.points) - 1
	i := p.current.Index + 1
	if i > last {
		i = last
	}
	for ; i < last; i++ {
		if mercator.DistanceOnEarth(p.points[i], p.current.Point) > toleranceM {
			break
		}
	}
	return p.points[i], true
}

// UpdateProjection moves the cursor to the projection nearest the centre of rect.
func (p *Polyline) UpdateProjection(rect orb.Bound) Iter {
	return p.UpdateProjectionByPrediction(rect, -1)
}

// UpdateProjectionByPrediction projects the centre of rect onto every segment
// and moves the cursor to the best projection lying inside rect.
//
// With predictedM >= 0 the best projection is the one whose along-route
// advance from the cursor is closest to predictedM; otherwise it is the one
// geometrically nearest the centre. Projections more than the hysteresis behind
// the cursor are used only when nothing ahead qualifies. When no projection is
// inside rect the cursor is left alone and an invalid Iter is returned.
func (p *Polyline) UpdateProjectionByPrediction(rect orb.Bound, predictedM float64) Iter {
	if !p.IsValid() {
		return Iter{}
	}
	center := rect.Center()
	curDist := p.fromBegin(p.current)

	score := func(it Iter) float64 {
		return mercator.DistanceOnEarth(it.Point, center)
	}
	if predictedM >= 0 {
		score = func(it Iter) float64 {
			return math.Abs(p.fromBegin(it) - curDist - predictedM)
		}
	}

	var ahead, behind Iter
	aheadScore, behindScore := math.MaxFloat64, math.MaxFloat64
	for i := 0; i+1 < len(p.points); i++ {
		a, b := p.points[i], p.points[i+1]
		if !rect.Intersects(orb.Bound{Min: a, Max: a}.Extend(b)) {
			continue
		}
		pt, _ := mercator.ProjectToSegment(a, b, center)
		if !rect.Contains(pt) {
			continue
		}
		it := NewIter(pt, i)
		s := score(it)
		if p.fromBegin(it) >= curDist-p.hysteresisM {
			if s < aheadScore {
				ahead, aheadScore = it, s
			}
		} else if s < behindScore {
			behind, behindScore = it, s
		}
	}

	res := ahead
	if !res.valid {
		res = behind
	}
	if !res.valid {
		return Iter{}
	}
	// A projection onto a segment end belongs to the following segment.
	if next := res.Index + 1; next < len(p.points)-1 && mercator.AlmostEqual(res.Point, p.points[next]) {
		res = NewIter(p.points[next], next)
	}
	p.current = res
	return res
}

func (p *Polyline) inRange(it Iter) bool {
	return it.valid && it.Index >= 0 && it.Index < len(p.points)
}

func (p *Polyline) fromBegin(it Iter) float64 {
	return p.cumM[it.Index] + mercator.DistanceOnEarth(p.points[it.Index], it.Point)
}
