package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/brainbin/go-web-gateway/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeAPIError maps the client error taxonomy onto gateway status
// codes: remote errors keep the backend's verdict, network failures
// become 502 and timeouts 504.
func writeAPIError(w http.ResponseWriter, err error) {
	var remoteErr *apperrors.RemoteError
	if apperrors.As(err, &remoteErr) {
		writeError(w, remoteErr.StatusCode, remoteErr.Message)
		return
	}

	switch {
	case apperrors.IsTimeout(err):
		writeError(w, http.StatusGatewayTimeout, "The request took too long. Please try again.")
	case apperrors.IsNetwork(err):
		writeError(w, http.StatusBadGateway, "Could not reach the document service. Please try again.")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// accessToken returns the current session's bearer token and user id.
// RequireSession runs first on these routes, so a missing session here
// means it was cleared mid-request.
func (s *Server) accessToken() (token, userID string, ok bool) {
	sess := s.store.Get()
	if sess == nil {
		return "", "", false
	}
	return sess.AccessToken, sess.User.ID, true
}
