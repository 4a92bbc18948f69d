package server

import (
	"net/http"
	"strings"

	"github.com/brainbin/go-web-gateway/session"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readCredentials accepts JSON bodies from the front end and form
// posts from the plain login page.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if !decodeJSON(w, r, &req) {
			return req, false
		}
		return req, true
	}
	req.Email = r.FormValue("email")
	req.Password = r.FormValue("password")
	return req, true
}

type loginResponse struct {
	Redirect string        `json:"redirect"`
	User     *session.User `json:"user"`
}

type registerResponse struct {
	RequiresConfirmation bool          `json:"requires_confirmation"`
	Message              string        `json:"message,omitempty"`
	Redirect             string        `json:"redirect,omitempty"`
	User                 *session.User `json:"user,omitempty"`
}

type meResponse struct {
	State string        `json:"state"`
	User  *session.User `json:"user,omitempty"`
}

// LoginHandler exchanges credentials for a session. The optional
// "from" query parameter carries the page the guard bounced the user
// off, and comes back as the post-login redirect target.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := readCredentials(w, r)
		if !ok {
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		redirect, err := s.manager.Login(r.Context(), req.Email, req.Password, r.URL.Query().Get("from"))
		if err != nil {
			s.writeCookies(w)
			writeAPIError(w, err)
			return
		}

		s.writeCookies(w)
		writeJSON(w, http.StatusOK, loginResponse{Redirect: redirect, User: s.manager.User()})
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := readCredentials(w, r)
		if !ok {
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		outcome, err := s.manager.Register(r.Context(), req.Email, req.Password)
		if err != nil {
			s.writeCookies(w)
			writeAPIError(w, err)
			return
		}

		s.writeCookies(w)
		writeJSON(w, http.StatusOK, registerResponse{
			RequiresConfirmation: outcome.RequiresConfirmation,
			Message:              outcome.Message,
			Redirect:             outcome.Redirect,
			User:                 s.manager.User(),
		})
	}
}

// LogoutHandler ends the session locally regardless of whether the
// backend acknowledged the revocation.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.manager.Logout(r.Context()); err != nil {
			s.writeCookies(w)
			writeAPIError(w, err)
			return
		}

		s.writeCookies(w)
		writeJSON(w, http.StatusOK, loginResponse{Redirect: s.config.GetLoginPath()})
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, meResponse{
			State: s.manager.State().String(),
			User:  s.manager.User(),
		})
	}
}
