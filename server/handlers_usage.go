package server

import (
	"net/http"
)

func (s *Server) UsageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, userID, ok := s.accessToken()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not signed in")
			return
		}

		usage, err := s.api.Usage(r.Context(), token, userID)
		if err != nil {
			writeAPIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, usage)
	}
}

type healthzResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// HealthzHandler reports gateway liveness plus backend reachability.
// The gateway itself answers ok even when the backend is down, so a
// load balancer keeps routing to the UI while the backend recovers.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend := "ok"
		if err := s.api.Health(r.Context()); err != nil {
			backend = "unreachable"
		}
		writeJSON(w, http.StatusOK, healthzResponse{Status: "ok", Backend: backend})
	}
}
