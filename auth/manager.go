// Package auth owns the authenticated-user value for the whole
// process: it drives login, registration, logout and proactive token
// refresh, and keeps the cookie mirror in sync with the session store.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/brainbin/go-web-gateway/api"
	"github.com/brainbin/go-web-gateway/session"
)

// State is the lifecycle manager's authentication state.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// API is the slice of the backend client the lifecycle manager needs.
type API interface {
	Login(ctx context.Context, email, password string) (*api.TokenPair, error)
	Register(ctx context.Context, email, password string) (*api.RegisterResult, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

// CookieMirror receives the session's token projection. It is driven
// exclusively from the store-change observer, so there is exactly one
// update site no matter how many call sites mutate the session.
type CookieMirror interface {
	Apply(s *session.Session)
	Clear()
}

// Metrics records refresh outcomes. Optional.
type Metrics interface {
	RecordRefreshSuccess()
	RecordRefreshFailure()
}

// ManagerConfig is the timing and routing configuration the manager
// reads.
type ManagerConfig interface {
	GetRefreshSkew() time.Duration
	GetRefreshCheckInterval() time.Duration
	GetLoginPath() string
	GetLandingPath() string
}

// RegisterOutcome is the caller-visible result of a registration.
// Exactly one of the two shapes applies: an installed session with a
// redirect target, or a pending confirmation message with no state
// change.
type RegisterOutcome struct {
	RequiresConfirmation bool
	Message              string
	Redirect             string
}

// Manager is the session lifecycle state machine.
type Manager struct {
	api     API
	store   *session.Store
	mirror  CookieMirror
	config  ManagerConfig
	metrics Metrics
	nowTime func() time.Time

	mu    sync.RWMutex
	state State
	user  *session.User

	refreshGroup singleflight.Group
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithMetrics attaches a refresh-outcome recorder.
func WithMetrics(metrics Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

type noopMirror struct{}

func (noopMirror) Apply(*session.Session) {}
func (noopMirror) Clear()                 {}

// NewManager initializes the lifecycle manager with its dependencies.
func NewManager(apiClient API, store *session.Store, mirror CookieMirror, cfg ManagerConfig, options ...ManagerOption) (*Manager, error) {
	if apiClient == nil {
		return nil, errors.New("[NewManager] api client is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] session store is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewManager] config is required")
	}
	if mirror == nil {
		mirror = noopMirror{}
	}

	m := &Manager{
		api:     apiClient,
		store:   store,
		mirror:  mirror,
		config:  cfg,
		nowTime: time.Now,
		state:   StateLoading,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Start restores any persisted session, runs the proactive expiration
// check once, subscribes to store changes for the life of ctx, and
// launches the recurring refresh ticker. It returns once initial state
// is settled; the ticker keeps running until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	restored, err := m.store.Restore()
	if err != nil {
		log.Warn().Err(err).Msg("failed to restore persisted session")
	}

	// Single observer: every session change re-derives the user and
	// recomputes the cookie mirror. No other code path touches either.
	unsubscribe := m.store.Subscribe(m.onSessionChange)

	if restored != nil && restored.ExpiresWithin(m.nowTime(), m.config.GetRefreshSkew()) {
		m.Refresh(ctx)
	}

	// Settle initial state from whatever survived restore + refresh.
	m.onSessionChange(m.store.Get())

	go m.runRefreshTicker(ctx, unsubscribe)
	return nil
}

func (m *Manager) runRefreshTicker(ctx context.Context, unsubscribe func()) {
	ticker := time.NewTicker(m.config.GetRefreshCheckInterval())
	defer ticker.Stop()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkExpiration(ctx)
		}
	}
}

func (m *Manager) checkExpiration(ctx context.Context) {
	sess := m.store.Get()
	if sess == nil {
		return
	}
	if sess.ExpiresWithin(m.nowTime(), m.config.GetRefreshSkew()) {
		m.Refresh(ctx)
	}
}

func (m *Manager) onSessionChange(sess *session.Session) {
	m.mu.Lock()
	if sess == nil {
		m.state = StateUnauthenticated
		m.user = nil
	} else {
		m.state = StateAuthenticated
		user := sess.User
		m.user = &user
	}
	m.mu.Unlock()

	if sess == nil {
		m.mirror.Clear()
		return
	}
	m.mirror.Apply(sess)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns a copy of the authenticated user, or nil.
func (m *Manager) User() *session.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	cp := *m.user
	return &cp
}

// Login exchanges credentials and installs the resulting session. On
// success it returns the redirect target: the sanitized originally
// requested path when one was captured, otherwise the landing path.
// On failure the error goes back to the caller and state is untouched.
func (m *Manager) Login(ctx context.Context, email, password, from string) (string, error) {
	pair, err := m.api.Login(ctx, email, password)
	if err != nil {
		return "", err
	}

	if err := m.installTokenPair(pair); err != nil {
		return "", errors.Wrap(err, "[Manager.Login] install session")
	}

	log.Info().Str("email", email).Msg("user logged in")
	return m.redirectTarget(from), nil
}

// Register creates an account through the shared client wrapper. When
// the backend issues tokens immediately the outcome is identical to a
// successful login; when it requires email confirmation, nothing about
// authentication state changes and the message is handed back for
// display.
func (m *Manager) Register(ctx context.Context, email, password string) (*RegisterOutcome, error) {
	result, err := m.api.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if result.RequiresConfirmation {
		message := result.Message
		if message == "" {
			message = "Check your email to confirm your account before signing in."
		}
		return &RegisterOutcome{RequiresConfirmation: true, Message: message}, nil
	}

	if err := m.installTokenPair(&result.TokenPair); err != nil {
		return nil, errors.Wrap(err, "[Manager.Register] install session")
	}

	log.Info().Str("email", email).Msg("user registered")
	return &RegisterOutcome{Redirect: m.config.GetLandingPath()}, nil
}

// Logout tears the session down completely: best-effort backend
// notification, store cleared, cookies expired, user dropped. The
// cleanup runs identically even when the backend notification fails.
// Idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	if sess := m.store.Get(); sess != nil && sess.AccessToken != "" {
		if err := m.api.Logout(ctx, sess.AccessToken); err != nil {
			log.Warn().Err(err).Msg("backend logout notification failed")
		}
	}

	if err := m.store.Clear(); err != nil {
		return errors.Wrap(err, "[Manager.Logout] clear session")
	}
	log.Info().Msg("user logged out")
	return nil
}

// Refresh exchanges the current refresh token for a new pair and
// reports success. Overlapping triggers (ticker tick racing a manual
// call) collapse into one in-flight exchange. A failed exchange is
// treated as session invalidation: it triggers a full Logout and is
// never retried silently.
func (m *Manager) Refresh(ctx context.Context) bool {
	_, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		sess := m.store.Get()
		if sess == nil || sess.RefreshToken == "" {
			return nil, errNothingToRefresh
		}

		pair, err := m.api.Refresh(ctx, sess.RefreshToken)
		if err != nil {
			return nil, errors.Wrap(err, "[Manager.Refresh] exchange")
		}
		if err := m.installTokenPair(pair); err != nil {
			return nil, errors.Wrap(err, "[Manager.Refresh] install session")
		}
		return nil, nil
	})

	if err == nil {
		if m.metrics != nil {
			m.metrics.RecordRefreshSuccess()
		}
		return true
	}
	if errors.Is(err, errNothingToRefresh) {
		return false
	}

	if m.metrics != nil {
		m.metrics.RecordRefreshFailure()
	}
	log.Warn().Err(err).Msg("token refresh failed, forcing logout")
	if logoutErr := m.Logout(ctx); logoutErr != nil {
		log.Error().Err(logoutErr).Msg("logout after failed refresh")
	}
	return false
}

var errNothingToRefresh = errors.New("no refresh token present")

func (m *Manager) installTokenPair(pair *api.TokenPair) error {
	sess, err := session.FromTokenPair(pair.AccessToken, pair.RefreshToken, pair.Expiry(m.nowTime()))
	if err != nil {
		return err
	}
	// The backend's resolved identity wins over token claims.
	if pair.UserID != "" {
		sess.User.ID = pair.UserID
	}
	if pair.Email != "" {
		sess.User.Email = pair.Email
	}
	return m.store.Set(sess)
}

// redirectTarget sanitizes a captured "from" path. Only local absolute
// paths are honoured, and never the login view itself.
func (m *Manager) redirectTarget(from string) string {
	if from == "" ||
		!strings.HasPrefix(from, "/") ||
		strings.HasPrefix(from, "//") ||
		from == m.config.GetLoginPath() {
		return m.config.GetLandingPath()
	}
	return from
}
