package tracking

import (
	"log/slog"
	"sort"
	"strings"
)

const (
	WarningUnknownVehicle = "unknown_vehicle"
	WarningStaleFix       = "stale_fix"
	WarningOffRoute       = "off_route"
)

const maxWarningExamples = 3

type warningInfo struct {
	count    int
	examples []string
}

// WarningAggregator collects per-fix problems of one feed pass so they are
// logged once per type instead of once per vehicle.
type WarningAggregator struct {
	warnings map[string]*warningInfo
}

func NewWarningAggregator() *WarningAggregator {
	return &WarningAggregator{warnings: map[string]*warningInfo{}}
}

// Add records a warning occurrence with an example vehicle id.
func (w *WarningAggregator) Add(warningType, exampleID string) {
	info := w.warnings[warningType]
	if info == nil {
		info = &warningInfo{examples: make([]string, 0, maxWarningExamples)}
		w.warnings[warningType] = info
	}
	info.count++
	if len(info.examples) < maxWarningExamples {
		info.examples = append(info.examples, exampleID)
	}
}

func (w *WarningAggregator) Count(warningType string) int {
	if info := w.warnings[warningType]; info != nil {
		return info.count
	}
	return 0
}

// LogAll logs one line per warning type, in a stable order.
func (w *WarningAggregator) LogAll() {
	types := make([]string, 0, len(w.warnings))
	for t := range w.warnings {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		info := w.warnings[t]
		slog.Warn(warningDescription(t),
			"warning", t,
			"count", info.count,
			"examples", strings.Join(info.examples, ", "))
	}
}

func warningDescription(warningType string) string {
	switch warningType {
	case WarningUnknownVehicle:
		return "fixes for vehicles without a route were ignored"
	case WarningStaleFix:
		return "stale fixes were ignored"
	case WarningOffRoute:
		return "fixes were too far from their route to be matched"
	default:
		return "feed issue"
	}
}
