package server

import (
	"net/http"
	"strings"

	"github.com/brainbin/go-web-gateway/api"
)

type queryRequest struct {
	Question string `json:"question"`
}

// QueryHandler forwards a question to the document service. The API
// client owns the long query deadline, so slow answers surface here
// as gateway timeouts rather than hung requests.
func (s *Server) QueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			writeError(w, http.StatusBadRequest, "A question is required")
			return
		}

		token, userID, ok := s.accessToken()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not signed in")
			return
		}

		result, err := s.api.Query(r.Context(), token, userID, req.Question)
		if err != nil {
			s.recordAPIError(err)
			writeAPIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ClearContextHandler resets the backend's conversation memory.
func (s *Server) ClearContextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, userID, ok := s.accessToken()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not signed in")
			return
		}

		if err := s.api.ClearContext(r.Context(), token, userID); err != nil {
			s.recordAPIError(err)
			writeAPIError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) recordAPIError(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAPIError(api.ErrorClass(err))
}
