package routefollower

import (
	"net/http"
)

type healthResponse struct {
	Status                  string `json:"status"`
	LatestGTFSRealtimeEpoch int64  `json:"latest_gtfsrt_epoch"`
	Vehicles                int    `json:"vehicles"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:                  "ok",
		LatestGTFSRealtimeEpoch: s.opts.FeedTimestamp(),
		Vehicles:                len(s.tracker.Sessions()),
	})
}
