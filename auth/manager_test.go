package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/brainbin/go-web-gateway/api"
	"github.com/brainbin/go-web-gateway/auth"
	"github.com/brainbin/go-web-gateway/auth/authfakes"
	"github.com/brainbin/go-web-gateway/session"
)

const (
	testUserID    = "user-1"
	testUserEmail = "john.doe@example.com"
	testPassword  = "password123"
)

type testManagerConfig struct{}

func (testManagerConfig) GetRefreshSkew() time.Duration          { return 5 * time.Minute }
func (testManagerConfig) GetRefreshCheckInterval() time.Duration { return time.Minute }
func (testManagerConfig) GetLoginPath() string                   { return "/login" }
func (testManagerConfig) GetLandingPath() string                 { return "/" }

// recordingMirror captures every projection the observer pushes.
type recordingMirror struct {
	mu      sync.Mutex
	applied []*session.Session
	cleared int
}

func (m *recordingMirror) Apply(s *session.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, s)
}

func (m *recordingMirror) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
}

func (m *recordingMirror) clearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

func (m *recordingMirror) lastApplied() *session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.applied) == 0 {
		return nil
	}
	return m.applied[len(m.applied)-1]
}

type testFixture struct {
	api     *authfakes.FakeAPI
	store   *session.Store
	mirror  *recordingMirror
	manager *auth.Manager
}

func setupTestFixture(t *testing.T, options ...auth.ManagerOption) *testFixture {
	t.Helper()

	fakeAPI := authfakes.NewFakeAPI()
	store := session.NewStore()
	mirror := &recordingMirror{}

	manager, err := auth.NewManager(fakeAPI, store, mirror, testManagerConfig{}, options...)
	require.NoError(t, err)

	return &testFixture{
		api:     fakeAPI,
		store:   store,
		mirror:  mirror,
		manager: manager,
	}
}

func (f *testFixture) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, f.manager.Start(ctx))
}

func tokenPair(userID string, expiresIn int64) *api.TokenPair {
	return &api.TokenPair{
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
		ExpiresIn:    expiresIn,
		UserID:       userID,
		Email:        testUserEmail,
	}
}

func TestStartWithoutSessionIsUnauthenticated(t *testing.T) {
	f := setupTestFixture(t)
	require.Equal(t, auth.StateLoading, f.manager.State())

	f.start(t)
	require.Equal(t, auth.StateUnauthenticated, f.manager.State())
	require.Nil(t, f.manager.User())
}

func TestLoginInstallsSessionAndMirrorsCookies(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)
	f.api.LoginResult = tokenPair(testUserID, 3600)

	redirect, err := f.manager.Login(context.Background(), testUserEmail, testPassword, "")
	require.NoError(t, err)
	require.Equal(t, "/", redirect)

	require.Equal(t, auth.StateAuthenticated, f.manager.State())
	user := f.manager.User()
	require.NotNil(t, user)
	require.Equal(t, testUserID, user.ID)
	require.Equal(t, testUserEmail, user.Email)

	mirrored := f.mirror.lastApplied()
	require.NotNil(t, mirrored)
	require.Equal(t, "access-"+testUserID, mirrored.AccessToken)
	require.Equal(t, "refresh-"+testUserID, mirrored.RefreshToken)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)
	f.api.LoginErr = errors.New("invalid credentials")

	_, err := f.manager.Login(context.Background(), testUserEmail, "wrong", "")
	require.Error(t, err)
	require.Equal(t, auth.StateUnauthenticated, f.manager.State())
	require.Nil(t, f.store.Get())
}

func TestLoginRedirectTargets(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		expected string
	}{
		{"no from param", "", "/"},
		{"captured path", "/documents", "/documents"},
		{"login path itself", "/login", "/"},
		{"external url", "https://evil.example", "/"},
		{"scheme-relative url", "//evil.example", "/"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.start(t)
			f.api.LoginResult = tokenPair(testUserID, 3600)

			redirect, err := f.manager.Login(context.Background(), testUserEmail, testPassword, tc.from)
			require.NoError(t, err)
			require.Equal(t, tc.expected, redirect)
		})
	}
}

func TestLoginRefreshLogoutEndsUnauthenticated(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)
	f.api.LoginResult = tokenPair(testUserID, 3600)
	f.api.RefreshResult = tokenPair(testUserID, 7200)

	_, err := f.manager.Login(context.Background(), testUserEmail, testPassword, "")
	require.NoError(t, err)
	require.True(t, f.manager.Refresh(context.Background()))
	require.NoError(t, f.manager.Logout(context.Background()))

	require.Equal(t, auth.StateUnauthenticated, f.manager.State())
	require.Nil(t, f.manager.User())
	require.Nil(t, f.store.Get())
	require.GreaterOrEqual(t, f.mirror.clearCount(), 1)
}

func TestRefreshExtendsExpiry(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)
	f.api.LoginResult = tokenPair(testUserID, 600)
	f.api.RefreshResult = tokenPair(testUserID, 3600)

	_, err := f.manager.Login(context.Background(), testUserEmail, testPassword, "")
	require.NoError(t, err)
	before := f.store.Get().ExpiresAt

	require.True(t, f.manager.Refresh(context.Background()))
	after := f.store.Get().ExpiresAt
	require.True(t, after.After(before), "refresh must leave expiry strictly later")
}

func TestFailedRefreshForcesFullLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)
	f.api.LoginResult = tokenPair(testUserID, 600)
	f.api.RefreshErr = errors.New("refresh token revoked")

	_, err := f.manager.Login(context.Background(), testUserEmail, testPassword, "")
	require.NoError(t, err)

	// Repeated failures stay idempotent: always ends cleaned up.
	for i := 0; i < 3; i++ {
		require.False(t, f.manager.Refresh(context.Background()))
		require.Equal(t, auth.StateUnauthenticated, f.manager.State())
		require.Nil(t, f.store.Get())
	}
	require.GreaterOrEqual(t, f.mirror.clearCount(), 1)
}

func TestRefreshWithoutSessionIsNoop(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)

	require.False(t, f.manager.Refresh(context.Background()))
	require.Zero(t, f.api.RefreshCalls)
	// No session to invalidate, so no forced logout either.
	require.Zero(t, f.api.LogoutCalls)
}

func TestOverlappingRefreshesCollapse(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)
	f.api.LoginResult = tokenPair(testUserID, 600)
	_, err := f.manager.Login(context.Background(), testUserEmail, testPassword, "")
	require.NoError(t, err)

	f.api.RefreshResult = tokenPair(testUserID, 3600)
	f.api.RefreshStarted = make(chan struct{})
	f.api.RefreshRelease = make(chan struct{})

	results := make(chan bool, 5)
	go func() { results <- f.manager.Refresh(context.Background()) }()
	<-f.api.RefreshStarted // first exchange now held in flight

	for i := 0; i < 4; i++ {
		go func() { results <- f.manager.Refresh(context.Background()) }()
	}
	time.Sleep(50 * time.Millisecond) // let the stragglers join the flight
	close(f.api.RefreshRelease)

	for i := 0; i < 5; i++ {
		require.True(t, <-results)
	}
	require.Equal(t, 1, f.api.RefreshCalls, "overlapping refreshes must share one exchange")
}

func TestLogoutNotifiesBackendBestEffort(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)
	f.api.LoginResult = tokenPair(testUserID, 3600)
	f.api.LogoutErr = errors.New("backend unreachable")

	_, err := f.manager.Login(context.Background(), testUserEmail, testPassword, "")
	require.NoError(t, err)

	// Backend failure must not prevent local cleanup.
	require.NoError(t, f.manager.Logout(context.Background()))
	require.Equal(t, auth.StateUnauthenticated, f.manager.State())
	require.Nil(t, f.store.Get())
	require.Equal(t, []string{"access-" + testUserID}, f.api.LogoutTokens)
}

func TestRegisterRequiresConfirmation(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)
	f.api.RegisterResult = &api.RegisterResult{
		Status:               api.StatusSuccess,
		RequiresConfirmation: true,
		Message:              "Check your inbox",
	}

	outcome, err := f.manager.Register(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)
	require.True(t, outcome.RequiresConfirmation)
	require.Equal(t, "Check your inbox", outcome.Message)

	// Authentication state must not change.
	require.Equal(t, auth.StateUnauthenticated, f.manager.State())
	require.Nil(t, f.store.Get())
}

func TestRegisterWithImmediateTokens(t *testing.T) {
	f := setupTestFixture(t)
	f.start(t)
	f.api.RegisterResult = &api.RegisterResult{
		Status:    api.StatusSuccess,
		TokenPair: *tokenPair(testUserID, 3600),
	}

	outcome, err := f.manager.Register(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)
	require.False(t, outcome.RequiresConfirmation)
	require.Equal(t, "/", outcome.Redirect)
	require.Equal(t, auth.StateAuthenticated, f.manager.State())
}

func TestStartRefreshesNearExpiredPersistedSession(t *testing.T) {
	dir := t.TempDir()
	persister, err := session.NewFilePersister(dir+"/session.enc", "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)
	require.NoError(t, persister.Save(&session.Session{
		AccessToken:  "stale-access",
		RefreshToken: "stale-refresh",
		ExpiresAt:    time.Now().Add(time.Minute), // inside the 5m skew
		User:         session.User{ID: testUserID, Email: testUserEmail},
	}))

	fakeAPI := authfakes.NewFakeAPI()
	fakeAPI.RefreshResult = tokenPair(testUserID, 3600)
	store := session.NewStore(session.WithPersister(persister))
	mirror := &recordingMirror{}
	manager, err := auth.NewManager(fakeAPI, store, mirror, testManagerConfig{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, manager.Start(ctx))

	require.Equal(t, 1, fakeAPI.RefreshCalls)
	require.Equal(t, auth.StateAuthenticated, manager.State())
	require.Equal(t, "access-"+testUserID, store.Get().AccessToken)
}
