package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Persister saves the current session across process restarts.
type Persister interface {
	Save(s *Session) error
	Load() (*Session, error)
	Delete() error
}

// Store owns the current session and fans out change notifications.
// It is the single source of truth; the cookie mirror and the lifecycle
// manager both derive from its notifications rather than being updated
// at each call site.
type Store struct {
	mu      sync.RWMutex
	current *Session

	subMu       sync.RWMutex
	subscribers map[string]func(*Session)

	persister Persister
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersister attaches on-disk persistence to the store.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) {
		s.persister = p
	}
}

// NewStore creates an empty session store.
func NewStore(options ...StoreOption) *Store {
	s := &Store{
		subscribers: make(map[string]func(*Session)),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Get returns a copy of the current session, or nil when
// unauthenticated.
func (s *Store) Get() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Set replaces the current session wholesale, persists it, and
// notifies subscribers.
func (s *Store) Set(sess *Session) error {
	if sess == nil {
		return errors.New("[Store.Set] nil session, use Clear")
	}
	cp := *sess

	s.mu.Lock()
	s.current = &cp
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Save(&cp); err != nil {
			return errors.Wrap(err, "[Store.Set] persist")
		}
	}
	s.notify(&cp)
	return nil
}

// Clear destroys the current session, removes the persisted copy, and
// notifies subscribers with nil. Safe to call when already empty.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Delete(); err != nil {
			return errors.Wrap(err, "[Store.Clear] delete persisted session")
		}
	}
	s.notify(nil)
	return nil
}

// Restore loads any persisted session into the store without firing
// notifications; it runs before subscribers exist, during startup.
// A session already expired beyond its refresh window is still
// restored - the lifecycle manager decides whether it is refreshable.
func (s *Store) Restore() (*Session, error) {
	if s.persister == nil {
		return nil, nil
	}
	sess, err := s.persister.Load()
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Restore] load")
	}
	if sess == nil {
		return nil, nil
	}
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	cp := *sess
	return &cp, nil
}

// Subscribe registers a change callback and returns its unsubscribe
// function. The callback receives a copy of the new session, or nil on
// clear, and must not block.
func (s *Store) Subscribe(fn func(*Session)) func() {
	id := uuid.New().String()

	s.subMu.Lock()
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(sess *Session) {
	s.subMu.RLock()
	subs := make([]func(*Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		var cp *Session
		if sess != nil {
			c := *sess
			cp = &c
		}
		fn(cp)
	}
}

// IsAuthenticated reports whether the store holds a session that is
// valid right now.
func (s *Store) IsAuthenticated() bool {
	sess := s.Get()
	if !sess.Valid(time.Now()) {
		if sess != nil {
			log.Debug().Time("expires_at", sess.ExpiresAt).Msg("stored session no longer valid")
		}
		return false
	}
	return true
}
