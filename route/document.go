package route

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/route-follower/mercator"
	"github.com/theoremus-urban-solutions/route-follower/turns"
)

// ErrInvalidDocument is returned for route documents that cannot be decoded.
var ErrInvalidDocument = errors.New("invalid route document")

var validate = validator.New()

type documentPoint struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

type documentTime struct {
	Time  *uint32 `json:"time" validate:"required"`
	Index *uint32 `json:"index" validate:"required"`
}

type documentStreet struct {
	Name  *string `json:"name" validate:"required"`
	Index *uint32 `json:"index" validate:"required"`
}

type documentInstruction struct {
	StreetSource        *string `json:"streetSource" validate:"required"`
	StreetTarget        *string `json:"streetTarget" validate:"required"`
	ExitNumber          *uint32 `json:"exitNumber" validate:"required"`
	Exited              bool    `json:"exited"`
	TurnDirection       *int    `json:"turnDirection" validate:"required,gte=0"`
	PedestrianDirection *int    `json:"pedestrianDirection" validate:"required,gte=0"`
	StartInterval       uint32  `json:"startInterval"`
	EndInterval         *uint32 `json:"endInterval" validate:"required"`
	Time                uint32  `json:"time"`
	KeepAnyways         *bool   `json:"keepAnyways" validate:"required"`
}

// document is the wire form of a route. Field order is part of the format.
type document struct {
	Points           []documentPoint       `json:"points" validate:"required,dive"`
	Turns            []float64             `json:"turns"`
	Times            []documentTime        `json:"times" validate:"required,dive"`
	Streets          []documentStreet      `json:"streets" validate:"required,dive"`
	Instructions     []documentInstruction `json:"instructions" validate:"required,dive"`
	AbsentCountries  []string              `json:"absentCountries"`
	DistanceMercator float64               `json:"distanceMercator"`
	Distance         float64               `json:"distance"`
	Duration         uint32                `json:"duration"`
	Name             string                `json:"name"`
}

func ptr[T any](v T) *T { return &v }

// MarshalDocument encodes the route geometry, tables and summary as a route document.
func MarshalDocument(r *Route) ([]byte, error) {
	points := r.poly.Points()
	doc := document{
		Points:          make([]documentPoint, 0, len(points)),
		Turns:           r.TurnsDistances(),
		Times:           make([]documentTime, 0, len(r.times)),
		Streets:         make([]documentStreet, 0, len(r.streets)),
		Instructions:    make([]documentInstruction, 0, len(r.turns)),
		AbsentCountries: r.AbsentCountries(),
		Distance:        r.TotalDistanceMeters(),
		Duration:        r.TotalTimeSeconds(),
		Name:            r.router,
	}
	for _, p := range points {
		doc.Points = append(doc.Points, documentPoint{
			Latitude:  ptr(mercator.YToLat(p[1])),
			Longitude: ptr(mercator.XToLon(p[0])),
		})
	}
	for _, t := range r.times {
		doc.Times = append(doc.Times, documentTime{Time: ptr(t.Seconds), Index: ptr(t.Index)})
	}
	for _, s := range r.streets {
		doc.Streets = append(doc.Streets, documentStreet{Name: ptr(s.Name), Index: ptr(s.Index)})
	}
	var previous uint32
	for _, t := range r.turns {
		doc.Instructions = append(doc.Instructions, documentInstruction{
			StreetSource:        ptr(t.SourceName),
			StreetTarget:        ptr(t.TargetName),
			ExitNumber:          ptr(t.ExitNum),
			Exited:              t.ExitNum != 0,
			TurnDirection:       ptr(int(t.Direction)),
			PedestrianDirection: ptr(int(t.PedestrianDirection)),
			StartInterval:       previous,
			EndInterval:         ptr(t.Index),
			Time:                r.timeAtIndex(t.Index),
			KeepAnyways:         ptr(t.KeepAnyway),
		})
		previous = t.Index
	}
	if len(points) > 0 {
		doc.DistanceMercator = turns.CalculateMercatorDistanceAlongPath(0, uint32(len(points)-1), points)
	}
	return json.Marshal(doc)
}

func (r *Route) ToJSON() ([]byte, error) { return MarshalDocument(r) }

// UnmarshalDocument builds a car profile route from a route document.
func UnmarshalDocument(data []byte) (*Route, error) {
	r := New("", nil, "", CarSettings())
	if err := r.FromJSON(data); err != nil {
		return nil, err
	}
	return r, nil
}

// FromJSON replaces the geometry, tables and router id of r with the
// contents of a route document. On error r is left untouched. The route name
// and settings are kept.
func (r *Route) FromJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	points := make(orb.LineString, 0, len(doc.Points))
	for _, p := range doc.Points {
		points = append(points, mercator.FromLatLon(*p.Latitude, *p.Longitude))
	}
	inRange := func(field string, i int, index uint32) error {
		if int(index) >= len(points) {
			return fmt.Errorf("%w: %s[%d] index %d outside %d points", ErrInvalidDocument, field, i, index, len(points))
		}
		return nil
	}

	times := make([]TimeItem, 0, len(doc.Times))
	for i, t := range doc.Times {
		if err := inRange("times", i, *t.Index); err != nil {
			return err
		}
		times = append(times, TimeItem{Index: *t.Index, Seconds: *t.Time})
	}
	streets := make([]StreetItem, 0, len(doc.Streets))
	for i, s := range doc.Streets {
		if err := inRange("streets", i, *s.Index); err != nil {
			return err
		}
		streets = append(streets, StreetItem{Index: *s.Index, Name: *s.Name})
	}
	items := make([]turns.TurnItem, 0, len(doc.Instructions))
	for i, in := range doc.Instructions {
		if err := inRange("instructions", i, *in.EndInterval); err != nil {
			return err
		}
		items = append(items, turns.TurnItem{
			Index:               *in.EndInterval,
			Direction:           turns.TurnDirection(*in.TurnDirection),
			PedestrianDirection: turns.PedestrianDirection(*in.PedestrianDirection),
			ExitNum:             *in.ExitNumber,
			KeepAnyway:          *in.KeepAnyways,
			SourceName:          *in.StreetSource,
			TargetName:          *in.StreetTarget,
		})
	}

	next := New(doc.Name, points, r.name, r.settings)
	next.SetTurnInstructions(items)
	next.SetSectionTimes(times)
	next.SetStreetNames(streets)
	for _, c := range doc.AbsentCountries {
		next.AddAbsentCountry(c)
	}
	r.Swap(next)

	slog.Debug("route document loaded",
		"router", r.router,
		"points", len(points),
		"turns", len(items),
		"times", len(times),
		"streets", len(streets))
	return nil
}
