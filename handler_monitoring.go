package routefollower

import (
	"net/http"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/route-follower/formatter"
	"github.com/theoremus-urban-solutions/route-follower/siri"
)

// queryParams flattens the query string with lower-cased keys, as SIRI
// parameters are matched case-insensitively.
func queryParams(r *http.Request) map[string]string {
	params := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[strings.ToLower(k)] = strings.TrimSpace(v[0])
		}
	}
	return params
}

func (s *Server) vehicleMonitoring(r *http.Request) *siri.SiriResponse {
	params := queryParams(r)
	vm := s.tracker.VehicleMonitoring(s.opts.ValidFor)
	vm = formatter.FilterVehicleMonitoring(vm, params["lineref"], params["vehicleref"])
	return formatter.WrapVehicleMonitoringResponse(vm, time.Now(), s.opts.Codespace)
}

func (s *Server) handleVehicleMonitoringJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	buf, err := formatter.NewResponseBuilder().BuildJSON(s.vehicleMonitoring(r))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(siriErrorPayload(err.Error()))
		return
	}
	_, _ = w.Write(buf)
}

func (s *Server) handleVehicleMonitoringXML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(formatter.NewResponseBuilder().BuildXML(s.vehicleMonitoring(r)))
}
