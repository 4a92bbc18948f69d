package server

import "net/http"

func (s *Server) initRoutes() {
	// PAGES (guarded navigations)
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.PageMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.PageMiddleware(s.RouteGuardMiddleware)...))

	// AUTH (mutating handlers write the cookie pair themselves)
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.CookieSyncMiddleware)...))

	// SSO
	if s.oidc != nil {
		s.RegisterRouteFunc("GET "+RouteSSOLogin, ChainMiddleware(s.SSOLoginHandler(), s.RecoverMiddleware, s.LoggingMiddleware))
		s.RegisterRouteFunc("GET "+RouteSSOCallback, ChainMiddleware(s.SSOCallbackHandler(), s.RecoverMiddleware, s.LoggingMiddleware))
		s.RegisterRouteFunc("POST "+RouteSSOCallback, ChainMiddleware(s.SSOCallbackHandler(), s.RecoverMiddleware, s.LoggingMiddleware)) // For form_post response mode
	}

	// DOCUMENTS
	s.RegisterRouteHandler("POST "+RouteFiles, ChainMiddleware(s.UploadHandler(), s.APIMiddleware(s.RequireSession, s.CookieSyncMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteFiles, ChainMiddleware(s.ListFilesHandler(), s.APIMiddleware(s.RequireSession, s.CookieSyncMiddleware)...))
	s.RegisterRouteHandler("DELETE "+RouteFileByName, ChainMiddleware(s.DeleteFileHandler(), s.APIMiddleware(s.RequireSession, s.CookieSyncMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteTasks, ChainMiddleware(s.ListTasksHandler(), s.APIMiddleware(s.RequireSession, s.CookieSyncMiddleware)...))
	s.RegisterRouteHandler("DELETE "+RouteTaskByID, ChainMiddleware(s.DismissTaskHandler(), s.APIMiddleware(s.RequireSession, s.CookieSyncMiddleware)...))

	// QUERY
	s.RegisterRouteHandler("POST "+RouteQuery, ChainMiddleware(s.QueryHandler(), s.APIMiddleware(s.RequireSession, s.CookieSyncMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteQueryClear, ChainMiddleware(s.ClearContextHandler(), s.APIMiddleware(s.RequireSession, s.CookieSyncMiddleware)...))

	// ACCOUNT
	s.RegisterRouteHandler("GET "+RouteUsage, ChainMiddleware(s.UsageHandler(), s.APIMiddleware(s.RequireSession, s.CookieSyncMiddleware)...))

	// OPERATIONAL
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	if s.metrics != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	}

	// CORS preflight for the JSON routes
	s.RegisterRouteFunc("OPTIONS /api/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, s.CorsMiddleware))
}
