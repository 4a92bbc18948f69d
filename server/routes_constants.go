package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Page routes
	RouteIndex = "/"
	RouteLogin = "/login"

	// Auth routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthRegister = "/auth/register"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthMe       = "/auth/me"

	// SSO routes
	RouteSSOLogin    = "/auth/sso"
	RouteSSOCallback = "/auth/sso/callback"

	// Document routes
	RouteFiles      = "/api/files"
	RouteFileByName = "/api/files/{filename}"
	RouteTasks      = "/api/tasks"
	RouteTaskByID   = "/api/tasks/{id}"

	// Query routes
	RouteQuery      = "/api/query"
	RouteQueryClear = "/api/query/clear"

	// Account routes
	RouteUsage = "/api/usage"

	// Operational routes
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"
)
