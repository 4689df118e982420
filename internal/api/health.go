package api

import (
	"net/http"
	"time"
)

// HealthHandler responds with a simple status check.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "health"
	const method = "GET"

	ads := 0
	if s.AdStore != nil {
		ads = len(s.AdStore.GetAllAds())
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "ads": ads})

	s.observe(endpoint, method, http.StatusOK, start)
}
