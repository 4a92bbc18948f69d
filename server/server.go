package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/brainbin/go-web-gateway/api"
	"github.com/brainbin/go-web-gateway/auth"
	"github.com/brainbin/go-web-gateway/internal/config"
	"github.com/brainbin/go-web-gateway/internal/metrics"
	"github.com/brainbin/go-web-gateway/server/authflow"
	"github.com/brainbin/go-web-gateway/session"
	"github.com/brainbin/go-web-gateway/upload"
)

type OidcConfig struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

type Server struct {
	env     string // Environment (e.g., "DEV", "production")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	api     *api.Client
	store   *session.Store
	manager *auth.Manager
	tracker *upload.Tracker
	cookies *CookieState
	metrics *metrics.Collector

	oidc      *OidcConfig
	authState authflow.Repo
	limiter   *visitorLimiter
}

func New(cfg config.Config, apiClient *api.Client, store *session.Store, manager *auth.Manager, tracker *upload.Tracker, cookies *CookieState, collector *metrics.Collector) (*Server, error) {
	if apiClient == nil {
		return nil, fmt.Errorf("[Server New] api client is required")
	}
	if store == nil || manager == nil || tracker == nil {
		return nil, fmt.Errorf("[Server New] store, manager and tracker are required")
	}
	if cookies == nil {
		cookies = NewCookieState(cfg)
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		api:       apiClient,
		store:     store,
		manager:   manager,
		tracker:   tracker,
		cookies:   cookies,
		metrics:   collector,
		authState: authflow.NewInMemoryRepo(),
	}
	s.env = cfg.GetEnv()

	if cfg.GetEnableRateLimiting() {
		s.limiter = newVisitorLimiter(cfg.GetRateLimit(), cfg.GetRateBurst())
	}

	if err := s.initOidc(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise OIDC provider: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// initOidc wires the optional SSO provider. A gateway without an
// issuer configured simply does not expose the SSO routes.
func (s *Server) initOidc(ctx context.Context, cfg config.Config) error {
	issuer := cfg.GetOidcIssuer()
	if issuer == "" {
		return nil
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return fmt.Errorf("[Server initOidc] oidc.NewProvider: %w", err)
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GetOidcClientID(),
		ClientSecret: cfg.GetOidcClientSecret(),
		RedirectURL:  cfg.GetBaseURL() + RouteSSOCallback,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "offline_access"},
	}

	s.oidc = &OidcConfig{
		OidcProvider: provider,
		OAuth2Config: oauth2Config,
		OidcVerifier: provider.Verifier(&oidc.Config{ClientID: oauth2Config.ClientID}),
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

func logError(method, path, error string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	errorString := Red + error + ResetColor
	log.Printf("[%-19s] %s %s\n", displayMethod, path, errorString)
}
