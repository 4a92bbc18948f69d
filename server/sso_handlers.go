package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/brainbin/go-web-gateway/server/authflow"
	"github.com/brainbin/go-web-gateway/session"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// generateCodeChallenge creates a PKCE code challenge from a verifier
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// SSOLoginHandler starts the provider authorization flow with PKCE
// and a nonce, stashing both under the state parameter for the
// callback to verify.
func (s *Server) SSOLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.oidc == nil {
			http.Error(w, "SSO is not configured", http.StatusNotFound)
			return
		}

		state := generateRandomString(32)
		nonce := generateRandomString(32)
		codeVerifier := generateRandomString(48)

		returnURL := r.URL.Query().Get("from")
		if !isLocalPath(returnURL) {
			returnURL = s.config.GetLandingPath()
		}

		err := s.authState.Upsert(state, &authflow.State{
			CodeVerifier: codeVerifier,
			Nonce:        nonce,
			ReturnURL:    returnURL,
			CreatedAt:    time.Now(),
		})
		if err != nil {
			http.Error(w, "Failed to start SSO flow", http.StatusInternalServerError)
			return
		}

		authURL := s.oidc.OAuth2Config.AuthCodeURL(state,
			oauth2.SetAuthURLParam("nonce", nonce),
			oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(codeVerifier)),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

// SSOCallbackHandler finishes the flow: exchanges the code, verifies
// the ID token and nonce, then installs the provider's tokens as the
// gateway session. The cookie mirror picks the session up through the
// store observer like any other login.
func (s *Server) SSOCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.oidc == nil {
			http.Error(w, "SSO is not configured", http.StatusNotFound)
			return
		}

		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		flowState, err := s.authState.Get(state)
		if err != nil || flowState == nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// Clean up state after use
		if err := s.authState.Delete(state); err != nil {
			http.Error(w, "Invalid state parameter", http.StatusInternalServerError)
			return
		}

		oauth2Token, err := s.oidc.OAuth2Config.Exchange(
			r.Context(),
			code,
			oauth2.SetAuthURLParam("code_verifier", flowState.CodeVerifier),
		)
		if err != nil {
			http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			http.Error(w, "No ID token in response", http.StatusInternalServerError)
			return
		}

		idToken, err := s.oidc.OidcVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			http.Error(w, fmt.Sprintf("ID token verification failed: %v", err), http.StatusInternalServerError)
			return
		}

		var claims struct {
			Nonce string `json:"nonce"`
			Sub   string `json:"sub"`
			Email string `json:"email"`
		}
		if err := idToken.Claims(&claims); err != nil {
			http.Error(w, fmt.Sprintf("Failed to extract claims: %v", err), http.StatusInternalServerError)
			return
		}

		// Validate nonce to prevent replay attacks
		if claims.Nonce != flowState.Nonce {
			http.Error(w, "Invalid nonce", http.StatusUnauthorized)
			return
		}

		sess := &session.Session{
			AccessToken:  oauth2Token.AccessToken,
			RefreshToken: oauth2Token.RefreshToken,
			ExpiresAt:    oauth2Token.Expiry,
			User:         session.User{ID: claims.Sub, Email: claims.Email},
		}
		if err := s.store.Set(sess); err != nil {
			http.Error(w, "Failed to establish session", http.StatusInternalServerError)
			return
		}

		s.writeCookies(w)
		http.Redirect(w, r, flowState.ReturnURL, http.StatusSeeOther)
	}
}
