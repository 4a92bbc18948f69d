package session_test

import (
	"testing"
	"time"

	"github.com/brainbin/go-web-gateway/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedAccessToken(t *testing.T, sub, email string, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-secret"))
	require.NoError(t, err)
	return signed
}

func TestFromTokenPairDerivesIdentityFromClaims(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	access := signedAccessToken(t, testUserID, testUserEmail, expiry)

	sess, err := session.FromTokenPair(access, "refresh-token", time.Time{})
	require.NoError(t, err)
	require.Equal(t, testUserID, sess.User.ID)
	require.Equal(t, testUserEmail, sess.User.Email)
	require.True(t, expiry.Equal(sess.ExpiresAt))
}

func TestFromTokenPairServerExpiryWins(t *testing.T) {
	claimExpiry := time.Now().Add(time.Hour)
	serverExpiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	access := signedAccessToken(t, testUserID, testUserEmail, claimExpiry)

	sess, err := session.FromTokenPair(access, "refresh-token", serverExpiry)
	require.NoError(t, err)
	require.True(t, serverExpiry.Equal(sess.ExpiresAt))
}

func TestFromTokenPairOpaqueToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)

	// Opaque token with a server supplied expiry is fine
	sess, err := session.FromTokenPair("not-a-jwt", "refresh-token", expiry)
	require.NoError(t, err)
	require.Empty(t, sess.User.ID)

	// Without any expiry source the pair is unusable
	_, err = session.FromTokenPair("not-a-jwt", "refresh-token", time.Time{})
	require.Error(t, err)
}

func TestFromTokenPairEmptyTokens(t *testing.T) {
	_, err := session.FromTokenPair("", "refresh", time.Now())
	require.Error(t, err)

	_, err = session.FromTokenPair("access", "", time.Now())
	require.Error(t, err)
}
