package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/brainbin/go-web-gateway/internal/config"
	"github.com/brainbin/go-web-gateway/session"
)

// CookieState is the server-held projection of the session's token
// pair onto browser cookies. It is only ever written by the session
// manager's store observer, so the cookies can never disagree with the
// stored session. CookieSyncMiddleware attaches the current pair to
// every response.
type CookieState struct {
	accessName  string
	refreshName string

	mu      sync.RWMutex
	cookies []*http.Cookie
}

func NewCookieState(cfg config.SessionConfig) *CookieState {
	return &CookieState{
		accessName:  cfg.GetAccessCookieName(),
		refreshName: cfg.GetRefreshCookieName(),
	}
}

// Apply mirrors the session's tokens. Cookie expiry tracks the access
// token expiry so stale cookies age out even if Clear is never seen.
func (c *CookieState) Apply(s *session.Session) {
	if s == nil {
		c.Clear()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies = []*http.Cookie{
		c.newCookie(c.accessName, s.AccessToken, s.ExpiresAt),
		c.newCookie(c.refreshName, s.RefreshToken, s.ExpiresAt.Add(24*time.Hour)),
	}
}

// Clear replaces the pair with expired tombstones so the browser
// drops its copies on the next response.
func (c *CookieState) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := time.Unix(0, 0)
	access := c.newCookie(c.accessName, "", expired)
	access.MaxAge = -1
	refresh := c.newCookie(c.refreshName, "", expired)
	refresh.MaxAge = -1
	c.cookies = []*http.Cookie{access, refresh}
}

// Current returns the cookies the next response should carry.
func (c *CookieState) Current() []*http.Cookie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*http.Cookie(nil), c.cookies...)
}

func (c *CookieState) newCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) writeCookies(w http.ResponseWriter) {
	for _, cookie := range s.cookies.Current() {
		http.SetCookie(w, cookie)
	}
}

// CookieSyncMiddleware writes the mirrored cookie pair onto the
// response before the handler runs, so headers are still open.
// Handlers that mutate the session (login, logout) are not chained
// through this middleware and write the post-mutation pair themselves.
func (s *Server) CookieSyncMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeCookies(w)
		next(w, r)
	}
}
