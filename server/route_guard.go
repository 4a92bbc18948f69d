package server

import (
	"net/http"
	"net/url"
	"strings"
)

// GuardRedirect is the navigation redirect table. It returns the path
// the browser should be sent to, or "" when the request may proceed.
//
//	unauthenticated + protected page -> login, carrying the original
//	path in the "from" query parameter
//	authenticated + login page       -> the "from" target when it is a
//	safe local path, otherwise the landing page
func GuardRedirect(path string, query url.Values, authenticated bool, loginPath, landingPath string) string {
	if path == loginPath {
		if !authenticated {
			return ""
		}
		from := query.Get("from")
		if isLocalPath(from) && from != loginPath {
			return from
		}
		return landingPath
	}

	if authenticated {
		return ""
	}
	return loginPath + "?from=" + url.QueryEscape(path)
}

// isLocalPath rejects anything a browser could interpret as an
// absolute or protocol-relative URL.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//")
}

// RouteGuardMiddleware applies the redirect table to page navigations.
// Presence of the mirrored cookie pair is the signal; token validity
// is still settled by the backend once API calls are made.
func (s *Server) RouteGuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	loginPath := s.config.GetLoginPath()
	landingPath := s.config.GetLandingPath()

	return func(w http.ResponseWriter, r *http.Request) {
		target := GuardRedirect(r.URL.Path, r.URL.Query(), s.hasSessionCookies(r), loginPath, landingPath)
		if target != "" {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func (s *Server) hasSessionCookies(r *http.Request) bool {
	access, err := r.Cookie(s.cookies.accessName)
	if err != nil || access.Value == "" {
		return false
	}
	refresh, err := r.Cookie(s.cookies.refreshName)
	return err == nil && refresh.Value != ""
}

// RequireSession guards the JSON API routes. Blocked calls answer 401
// rather than redirecting, so the front end can route to login itself.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store.Get() == nil {
			writeError(w, http.StatusUnauthorized, "Not signed in")
			return
		}
		next(w, r)
	}
}
