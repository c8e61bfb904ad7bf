package routefollower

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/theoremus-urban-solutions/route-follower/location"
	"github.com/theoremus-urban-solutions/route-follower/route"
	"github.com/theoremus-urban-solutions/route-follower/tracking"
)

var validate = validator.New()

// fixRequest is a position fix posted for one vehicle. Speed and bearing are optional.
type fixRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Accuracy  float64  `json:"accuracy" validate:"gte=0"`
	Speed     *float64 `json:"speed" validate:"omitempty,gte=0"`
	Bearing   *float64 `json:"bearing" validate:"omitempty,gte=0,lt=360"`
	Timestamp float64  `json:"timestamp" validate:"gte=0"`
}

func (f fixRequest) gpsInfo(now time.Time) location.GpsInfo {
	ts := f.Timestamp
	if ts == 0 {
		ts = float64(now.UnixMilli()) / 1000
	}
	fix := location.NewGpsInfo(*f.Latitude, *f.Longitude, f.Accuracy, ts)
	if f.Speed != nil {
		fix.Speed = *f.Speed
	}
	if f.Bearing != nil {
		fix.Bearing = *f.Bearing
	}
	return fix
}

type fixResponse struct {
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Bearing   float64           `json:"bearing"`
	Matched   bool              `json:"matched"`
	Progress  tracking.Progress `json:"progress"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*tracking.Session, bool) {
	sess, err := s.tracker.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error()+": "+r.PathValue("id"))
		return nil, false
	}
	return sess, true
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	sessions := s.tracker.Sessions()
	out := make([]tracking.Progress, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.Progress())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Progress())
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req fixRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid fix: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid fix: "+err.Error())
		return
	}
	matched, info := sess.ProcessFix(req.gpsInfo(time.Now()))
	writeJSON(w, http.StatusOK, fixResponse{
		Latitude:  matched.Latitude,
		Longitude: matched.Longitude,
		Bearing:   matched.Bearing,
		Matched:   info.IsMatched(),
		Progress:  sess.Progress(),
	})
}

func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	doc, err := sess.Document()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

func (s *Server) handlePutRoute(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err := sess.LoadDocument(data); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, route.ErrInvalidDocument) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.Progress())
}
