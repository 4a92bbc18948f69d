package api

import (
	"context"
	"net/http"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	pair := &TokenPair{}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", credentialsRequest{Email: email, Password: password}, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

// Register creates a new account. Depending on backend policy the
// result carries either an immediate token pair or a confirmation
// notice; the caller decides what to do with each.
func (c *Client) Register(ctx context.Context, email, password string) (*RegisterResult, error) {
	result := &RegisterResult{}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", credentialsRequest{Email: email, Password: password}, result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" && !result.RequiresConfirmation {
		// Backends that omit the explicit flag still mean "confirm
		// first" when they answer success without tokens.
		result.RequiresConfirmation = true
	}
	return result, nil
}

// Refresh exchanges a refresh token for a fresh pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	pair := &TokenPair{}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", "", refreshRequest{RefreshToken: refreshToken}, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout notifies the backend that the session ends. Callers treat
// failures here as non-fatal; local cleanup happens regardless.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", accessToken, nil, nil)
}
