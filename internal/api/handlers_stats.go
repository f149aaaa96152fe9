package api

import "net/http"

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"upstreams": s.stats.Snapshots(),
	}
	if s.jobs != nil {
		resp["queue_depth"] = s.jobs.QueueDepth()
	}
	writeJSON(w, http.StatusOK, resp)
}
