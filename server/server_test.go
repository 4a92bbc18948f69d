package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainbin/go-web-gateway/api"
	"github.com/brainbin/go-web-gateway/auth"
	"github.com/brainbin/go-web-gateway/internal/config"
	"github.com/brainbin/go-web-gateway/server"
	"github.com/brainbin/go-web-gateway/session"
	"github.com/brainbin/go-web-gateway/upload"
)

const (
	testAccessToken  = "backend-access-token"
	testRefreshToken = "backend-refresh-token"
	testUserID       = "user-42"
	testUserEmail    = "ada@example.com"
)

// fakeBackend emulates the document service endpoints the gateway
// proxies to.
func fakeBackend() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "correct-horse" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"Invalid email or password"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  testAccessToken,
			"refresh_token": testRefreshToken,
			"expires_in":    3600,
			"user_id":       testUserID,
			"email":         creds.Email,
		})
	})

	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /api/v1/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"answer": "Revenue grew 12% year over year.",
		})
	})

	mux.HandleFunc("POST /api/v1/ingest/background", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "processing",
			"task_id": "task-1",
		})
	})

	mux.HandleFunc("GET /api/v1/tasks/task-1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"task_id": "task-1",
			"status":  "completed",
		})
	})

	mux.HandleFunc("GET /api/v1/usage/"+testUserID, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"usage": map[string]any{
				"files_used":   3,
				"queries_used": 7,
			},
		})
	})

	return mux
}

type serverFixture struct {
	gateway *httptest.Server
	client  *http.Client
}

func setupServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	backend := httptest.NewServer(fakeBackend())
	t.Cleanup(backend.Close)

	t.Setenv("BACKEND_URL", backend.URL)
	t.Setenv("ENV", "test")
	t.Setenv("ENABLE_RATE_LIMITING", "false")
	t.Setenv("TASK_POLL_MILLIS", "10")

	cfg := config.New()
	apiClient := api.New(cfg)
	store := session.NewStore()
	cookies := server.NewCookieState(cfg)

	manager, err := auth.NewManager(apiClient, store, cookies, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, manager.Start(ctx))

	tracker, err := upload.NewTracker(apiClient, cfg)
	require.NoError(t, err)
	t.Cleanup(tracker.Stop)

	srv, err := server.New(cfg, apiClient, store, manager, tracker, cookies, nil)
	require.NoError(t, err)

	gateway := httptest.NewServer(srv)
	t.Cleanup(gateway.Close)

	return &serverFixture{
		gateway: gateway,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (f *serverFixture) login(t *testing.T) []*http.Cookie {
	t.Helper()

	body := strings.NewReader(`{"email":"` + testUserEmail + `","password":"correct-horse"}`)
	resp, err := f.client.Post(f.gateway.URL+"/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return resp.Cookies()
}

func TestLoginSetsSessionCookiesAndRedirect(t *testing.T) {
	f := setupServerFixture(t)

	body := strings.NewReader(`{"email":"` + testUserEmail + `","password":"correct-horse"}`)
	resp, err := f.client.Post(f.gateway.URL+"/auth/login?from=%2Freports", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Redirect string        `json:"redirect"`
		User     *session.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "/reports", payload.Redirect)
	require.NotNil(t, payload.User)
	require.Equal(t, testUserID, payload.User.ID)

	cookies := map[string]string{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}
	require.Equal(t, testAccessToken, cookies["sb-access-token"])
	require.Equal(t, testRefreshToken, cookies["sb-refresh-token"])
}

func TestLoginFailureKeepsCookiesClear(t *testing.T) {
	f := setupServerFixture(t)

	body := strings.NewReader(`{"email":"` + testUserEmail + `","password":"wrong"}`)
	resp, err := f.client.Post(f.gateway.URL+"/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "Invalid email or password", payload.Error)

	for _, c := range resp.Cookies() {
		require.Empty(t, c.Value, "no token cookie should be set on failed login")
	}
}

func TestRouteGuardBouncesAnonymousNavigation(t *testing.T) {
	f := setupServerFixture(t)

	resp, err := f.client.Get(f.gateway.URL + "/reports/q3")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login?from=%2Freports%2Fq3", resp.Header.Get("Location"))
}

func TestRouteGuardAdmitsCookieHolder(t *testing.T) {
	f := setupServerFixture(t)
	cookies := f.login(t)

	req, err := http.NewRequest(http.MethodGet, f.gateway.URL+"/", nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(page), testUserEmail)
}

func TestRouteGuardSendsAuthenticatedUserOffLoginPage(t *testing.T) {
	f := setupServerFixture(t)
	cookies := f.login(t)

	req, err := http.NewRequest(http.MethodGet, f.gateway.URL+"/login?from=%2Freports", nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/reports", resp.Header.Get("Location"))
}

func TestAPIRoutesRequireSession(t *testing.T) {
	f := setupServerFixture(t)

	resp, err := f.client.Post(f.gateway.URL+"/api/query", "application/json", strings.NewReader(`{"question":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestQueryProxiesAnswer(t *testing.T) {
	f := setupServerFixture(t)
	f.login(t)

	resp, err := f.client.Post(f.gateway.URL+"/api/query", "application/json", strings.NewReader(`{"question":"How did revenue do?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result api.QueryResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Equal(t, "Revenue grew 12% year over year.", result.Answer)
}

func TestUploadRejectsUnsupportedExtensionLocally(t *testing.T) {
	f := setupServerFixture(t)
	f.login(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "malware.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := f.client.Post(f.gateway.URL+"/api/files", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Contains(t, payload.Error, "file type is not supported")
}

func TestUploadAcceptsDocumentAndTracksTask(t *testing.T) {
	f := setupServerFixture(t)
	f.login(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7 content"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := f.client.Post(f.gateway.URL+"/api/files", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var task upload.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.Equal(t, "task-1", task.ID)
	require.Equal(t, "report.pdf", task.Filename)
}

func TestLogoutExpiresCookies(t *testing.T) {
	f := setupServerFixture(t)
	f.login(t)

	resp, err := f.client.Post(f.gateway.URL+"/auth/logout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	expired := 0
	for _, c := range resp.Cookies() {
		if c.Name == "sb-access-token" || c.Name == "sb-refresh-token" {
			require.Empty(t, c.Value)
			require.Negative(t, c.MaxAge)
			expired++
		}
	}
	require.Equal(t, 2, expired)
}

func TestUsageSnapshot(t *testing.T) {
	f := setupServerFixture(t)
	f.login(t)

	resp, err := f.client.Get(f.gateway.URL + "/api/usage")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var usage api.Usage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&usage))
	require.Equal(t, 3, usage.FilesUsed)
	require.Equal(t, 7, usage.QueriesUsed)
}
