package tracking

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/route-follower/gtfsrt"
	"github.com/theoremus-urban-solutions/route-follower/metrics"
	"github.com/theoremus-urban-solutions/route-follower/siri"
)

var ErrUnknownVehicle = errors.New("unknown vehicle")

// Tracker maps vehicle ids to their sessions.
type Tracker struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	staleAfter time.Duration
	now        func() time.Time
}

// NewTracker returns an empty tracker. Fixes older than staleAfter are ignored
// by Apply; zero disables the check.
func NewTracker(staleAfter time.Duration) *Tracker {
	return &Tracker{
		sessions:   map[string]*Session{},
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Add registers a session, replacing any session of the same vehicle.
func (t *Tracker) Add(s *Session) {
	t.mu.Lock()
	t.sessions[s.VehicleID()] = s
	n := len(t.sessions)
	t.mu.Unlock()
	metrics.TrackedVehicles.Set(float64(n))
}

func (t *Tracker) Remove(vehicleID string) bool {
	t.mu.Lock()
	_, ok := t.sessions[vehicleID]
	delete(t.sessions, vehicleID)
	n := len(t.sessions)
	t.mu.Unlock()
	metrics.TrackedVehicles.Set(float64(n))
	return ok
}

func (t *Tracker) Session(vehicleID string) (*Session, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[vehicleID]
	if !ok {
		return nil, ErrUnknownVehicle
	}
	return s, nil
}

// Sessions returns every session ordered by vehicle id.
func (t *Tracker) Sessions() []*Session {
	t.mu.RLock()
	out := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID() < out[j].VehicleID() })
	return out
}

// Apply feeds vehicle positions to their sessions and returns how many were processed.
// Unknown vehicles, stale fixes and fixes not newer than the last one are skipped.
func (t *Tracker) Apply(fixes []gtfsrt.VehicleFix) int {
	return t.apply(fixes, NewWarningAggregator())
}

func (t *Tracker) apply(fixes []gtfsrt.VehicleFix, warnings *WarningAggregator) int {
	now := t.now()
	applied := 0
	for _, vf := range fixes {
		s, err := t.Session(vf.VehicleID)
		if err != nil {
			metrics.FixesUnknownVehicleTotal.Inc()
			warnings.Add(WarningUnknownVehicle, vf.VehicleID)
			continue
		}
		if t.staleAfter > 0 && now.Sub(time.Unix(int64(vf.Fix.Timestamp), 0)) > t.staleAfter {
			warnings.Add(WarningStaleFix, vf.VehicleID)
			continue
		}
		info, ok := s.Advance(vf.Fix)
		if !ok {
			continue
		}
		applied++
		if !info.IsMatched() {
			warnings.Add(WarningOffRoute, vf.VehicleID)
		}
	}
	warnings.LogAll()
	return applied
}

// VehicleMonitoring builds a VM delivery from every session that has a fix.
func (t *Tracker) VehicleMonitoring(validFor time.Duration) siri.VehicleMonitoring {
	var activities []siri.VehicleActivityEntry
	for _, s := range t.Sessions() {
		if a, ok := s.Activity(validFor); ok {
			activities = append(activities, a)
		}
	}
	return siri.BuildVehicleMonitoring(t.now(), validFor, activities)
}
