package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// accessClaims are the claims the gateway reads out of a provider
// issued access token. Signature validation is the backend's job on
// every API call; here the token is only a carrier for identity and
// expiry.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// FromTokenPair builds a Session from a raw token pair. Identity and
// expiry are taken from the access token's claims when the caller does
// not already know them; expiresAt overrides the token's exp claim when
// non-zero (the server-provided value wins).
func FromTokenPair(accessToken, refreshToken string, expiresAt time.Time) (*Session, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, errors.New("[session.FromTokenPair] empty token in pair")
	}

	s := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}

	claims := &accessClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		// Opaque (non-JWT) access tokens are acceptable as long as the
		// caller supplied an expiry.
		if expiresAt.IsZero() {
			return nil, errors.Wrap(err, "[session.FromTokenPair] opaque token without expiry")
		}
		return s, nil
	}

	if claims.Subject != "" {
		s.User.ID = claims.Subject
	}
	if claims.Email != "" {
		s.User.Email = claims.Email
	}
	if expiresAt.IsZero() && claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if s.ExpiresAt.IsZero() {
		return nil, errors.New("[session.FromTokenPair] no expiry in response or token")
	}
	return s, nil
}
