package config

import (
	"strconv"
	"time"
)

type APIConfig interface {
	GetBackendURL() string
	GetBackendPathPrefix() string
	GetQueryTimeout() time.Duration
	GetRequestTimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetBackendURL returns the base URL of the remote BrainBin backend.
func (API) GetBackendURL() string {
	return GetEnv("BACKEND_URL", "http://localhost:8000")
}

// GetBackendPathPrefix returns the path prefix prepended to every
// backend endpoint. Deployments disagree on whether the backend mounts
// its routes under /api/v1, so it is configuration rather than a
// constant. An empty value means no prefix.
func (API) GetBackendPathPrefix() string {
	return GetEnv("BACKEND_PATH_PREFIX", "/api/v1")
}

// GetQueryTimeout returns the client-side deadline applied to question
// answering requests. Queries run a retrieval pipeline on the backend
// and are the only calls slow enough to need their own budget.
func (API) GetQueryTimeout() time.Duration {
	return envDuration("QUERY_TIMEOUT_SECONDS", 45*time.Second)
}

// GetRequestTimeout returns the transport timeout for all other calls.
func (API) GetRequestTimeout() time.Duration {
	return envDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second)
}

func envDuration(envVar string, defaultValue time.Duration) time.Duration {
	v := GetEnv(envVar, "")
	if v == "" {
		return defaultValue
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}
