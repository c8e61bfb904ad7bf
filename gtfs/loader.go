package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

var wantedFiles = map[string]bool{
	"agency.txt":     true,
	"routes.txt":     true,
	"trips.txt":      true,
	"stops.txt":      true,
	"stop_times.txt": true,
	"shapes.txt":     true,
}

// NewIndexFromBytes builds an index from the bytes of a GTFS zip.
func NewIndexFromBytes(data []byte, agencyID string) (*Index, error) {
	return NewIndexFromReader(bytes.NewReader(data), int64(len(data)), agencyID)
}

// NewIndexFromReader builds an index from a GTFS zip of the given size.
func NewIndexFromReader(r io.ReaderAt, size int64, agencyID string) (*Index, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open gtfs zip: %w", err)
	}
	g := NewIndex(agencyID)
	if err := g.load(zr.File); err != nil {
		return nil, err
	}
	return g, nil
}

// NewIndexFromFile builds an index from a local GTFS zip file.
func NewIndexFromFile(path, agencyID string) (*Index, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gtfs zip %s: %w", path, err)
	}
	defer zr.Close()
	g := NewIndex(agencyID)
	if err := g.load(zr.File); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Index) load(files []*zip.File) error {
	for _, f := range files {
		if !wantedFiles[strings.ToLower(f.Name)] {
			continue
		}
		if err := g.consumeCSV(f); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

func (g *Index) consumeCSV(f *zip.File) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	field := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	switch strings.ToLower(f.Name) {
	case "agency.txt":
		agID := idx("agency_id")
		agName := idx("agency_name")
		if len(rec) > 1 {
			if g.AgencyID == "" {
				g.AgencyID = field(rec[1], agID)
			}
			g.AgencyName = field(rec[1], agName)
		}
	case "routes.txt":
		rID := idx("route_id")
		rSN := idx("route_short_name")
		rLN := idx("route_long_name")
		for _, row := range rec[1:] {
			name := field(row, rSN)
			if name == "" {
				name = field(row, rLN)
			}
			if id := field(row, rID); id != "" {
				g.RouteShortNames[id] = name
			}
		}
	case "trips.txt":
		rID := idx("route_id")
		tID := idx("trip_id")
		hs := idx("trip_headsign")
		dir := idx("direction_id")
		sh := idx("shape_id")
		for _, row := range rec[1:] {
			trip := field(row, tID)
			if trip == "" {
				continue
			}
			g.TripToRoute[trip] = field(row, rID)
			g.TripHeadsign[trip] = field(row, hs)
			g.TripDirection[trip] = field(row, dir)
			g.TripShapeID[trip] = field(row, sh)
		}
	case "stops.txt":
		sID := idx("stop_id")
		sN := idx("stop_name")
		sLat := idx("stop_lat")
		sLon := idx("stop_lon")
		for _, row := range rec[1:] {
			id := field(row, sID)
			if id == "" {
				continue
			}
			g.StopNames[id] = field(row, sN)
			lat, errLat := strconv.ParseFloat(field(row, sLat), 64)
			lon, errLon := strconv.ParseFloat(field(row, sLon), 64)
			if errLat == nil && errLon == nil {
				g.StopCoord[id] = [2]float64{lon, lat}
			}
		}
	case "stop_times.txt":
		tID := idx("trip_id")
		sID := idx("stop_id")
		sq := idx("stop_sequence")
		arr := idx("arrival_time")
		dep := idx("departure_time")
		if tID < 0 || sID < 0 || sq < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			seq, err := strconv.Atoi(field(row, sq))
			if err != nil {
				continue
			}
			trip := field(row, tID)
			g.TripStopTimes[trip] = append(g.TripStopTimes[trip], StopTime{
				StopID:    field(row, sID),
				Sequence:  seq,
				Arrival:   field(row, arr),
				Departure: field(row, dep),
			})
		}
		for _, st := range g.TripStopTimes {
			sort.SliceStable(st, func(i, j int) bool { return st[i].Sequence < st[j].Sequence })
		}
	case "shapes.txt":
		sh := idx("shape_id")
		latIdx := idx("shape_pt_lat")
		lonIdx := idx("shape_pt_lon")
		seqIdx := idx("shape_pt_sequence")
		if sh < 0 || latIdx < 0 || lonIdx < 0 || seqIdx < 0 {
			return nil
		}
		tmp := map[string][]struct {
			lon, lat float64
			seq      int
		}{}
		for _, row := range rec[1:] {
			lat, errLat := strconv.ParseFloat(field(row, latIdx), 64)
			lon, errLon := strconv.ParseFloat(field(row, lonIdx), 64)
			seq, errSeq := strconv.Atoi(field(row, seqIdx))
			if errLat != nil || errLon != nil || errSeq != nil {
				continue
			}
			shapeID := field(row, sh)
			tmp[shapeID] = append(tmp[shapeID], struct {
				lon, lat float64
				seq      int
			}{lon, lat, seq})
		}
		for shapeID, arr := range tmp {
			sort.SliceStable(arr, func(i, j int) bool { return arr[i].seq < arr[j].seq })
			pts := make([][2]float64, len(arr))
			for i, p := range arr {
				pts[i] = [2]float64{p.lon, p.lat}
			}
			g.ShapePoints[shapeID] = pts
		}
	}
	return nil
}
