package config

import (
	"path/filepath"
	"time"
)

type SessionConfig interface {
	GetRefreshSkew() time.Duration
	GetRefreshCheckInterval() time.Duration
	GetAccessCookieName() string
	GetRefreshCookieName() string
	GetLoginPath() string
	GetLandingPath() string
	GetSessionFile() string
	GetMasterKeyHex() string
	GetOidcIssuer() string
	GetOidcClientID() string
	GetOidcClientSecret() string
}

type Session struct{}

var _ SessionConfig = Session{}

// GetRefreshSkew returns how long before token expiry a proactive
// refresh is triggered.
func (Session) GetRefreshSkew() time.Duration {
	return envDuration("REFRESH_SKEW_SECONDS", 5*time.Minute)
}

// GetRefreshCheckInterval returns the period of the recurring
// expiration check for an authenticated session.
func (Session) GetRefreshCheckInterval() time.Duration {
	return envDuration("REFRESH_CHECK_SECONDS", time.Minute)
}

func (Session) GetAccessCookieName() string {
	return GetEnv("ACCESS_COOKIE_NAME", "sb-access-token")
}

func (Session) GetRefreshCookieName() string {
	return GetEnv("REFRESH_COOKIE_NAME", "sb-refresh-token")
}

func (Session) GetLoginPath() string {
	return "/login"
}

func (Session) GetLandingPath() string {
	return "/"
}

// GetSessionFile returns the path of the encrypted session file.
func (s Session) GetSessionFile() string {
	return GetEnv("SESSION_FILE", filepath.Join(EnvVars{}.GetDataFolder(), "session.enc"))
}

// GetMasterKeyHex returns the hex-encoded 32-byte key used to encrypt
// the persisted session. Empty disables persistence.
func (Session) GetMasterKeyHex() string {
	return GetEnv("MASTER_KEY_HEX", "")
}

func (Session) GetOidcIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}

func (Session) GetOidcClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Session) GetOidcClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}
