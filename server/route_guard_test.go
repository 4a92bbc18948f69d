package server_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainbin/go-web-gateway/server"
)

func TestGuardRedirectTable(t *testing.T) {
	const (
		loginPath   = "/login"
		landingPath = "/"
	)

	tests := []struct {
		name          string
		path          string
		query         string
		authenticated bool
		want          string
	}{
		{
			name:          "unauthenticated protected page bounces to login with from",
			path:          "/documents/reports",
			authenticated: false,
			want:          "/login?from=%2Fdocuments%2Freports",
		},
		{
			name:          "unauthenticated landing page bounces to login",
			path:          "/",
			authenticated: false,
			want:          "/login?from=%2F",
		},
		{
			name:          "unauthenticated login page proceeds",
			path:          "/login",
			authenticated: false,
			want:          "",
		},
		{
			name:          "authenticated protected page proceeds",
			path:          "/documents/reports",
			authenticated: true,
			want:          "",
		},
		{
			name:          "authenticated login page goes back where it came from",
			path:          "/login",
			query:         "from=%2Fdocuments%2Freports",
			authenticated: true,
			want:          "/documents/reports",
		},
		{
			name:          "authenticated login page without from goes to landing",
			path:          "/login",
			authenticated: true,
			want:          "/",
		},
		{
			name:          "absolute from target is discarded",
			path:          "/login",
			query:         "from=https%3A%2F%2Fevil.example%2Fphish",
			authenticated: true,
			want:          "/",
		},
		{
			name:          "protocol-relative from target is discarded",
			path:          "/login",
			query:         "from=%2F%2Fevil.example",
			authenticated: true,
			want:          "/",
		},
		{
			name:          "from pointing back at login goes to landing",
			path:          "/login",
			query:         "from=%2Flogin",
			authenticated: true,
			want:          "/",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, err := url.ParseQuery(tc.query)
			require.NoError(t, err)

			got := server.GuardRedirect(tc.path, query, tc.authenticated, loginPath, landingPath)
			require.Equal(t, tc.want, got)
		})
	}
}
