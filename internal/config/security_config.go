package config

import "golang.org/x/time/rate"

type SecurityConfig interface {
	GetEnableRateLimiting() bool
	GetRateLimit() rate.Limit
	GetRateBurst() int
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetEnableRateLimiting() bool {
	return GetEnv("ENABLE_RATE_LIMITING", "true") == "true"
}

// GetRateLimit returns the sustained request rate allowed per client.
func (Security) GetRateLimit() rate.Limit {
	return rate.Limit(2) // 120 req/min
}

func (Security) GetRateBurst() int {
	return 30
}
