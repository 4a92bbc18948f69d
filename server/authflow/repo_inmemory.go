package authflow

import (
	"errors"
	"sync"
	"time"
)

// stateTTL bounds how long an abandoned authorization attempt is kept.
const stateTTL = 10 * time.Minute

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewInMemoryRepo creates a new in-memory auth flow state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]*State),
	}
}

// Upsert stores or updates an auth flow state
func (r *InMemoryRepo) Upsert(state string, flowState *State) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if flowState == nil {
		return errors.New("flowState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()

	// Create a copy to prevent external modifications
	r.states[state] = &State{
		CodeVerifier: flowState.CodeVerifier,
		Nonce:        flowState.Nonce,
		ReturnURL:    flowState.ReturnURL,
		CreatedAt:    flowState.CreatedAt,
	}

	return nil
}

// Get retrieves an auth flow state by state parameter
func (r *InMemoryRepo) Get(state string) (*State, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	flowState, exists := r.states[state]
	if !exists {
		return nil, errors.New("state not found")
	}

	// Return a copy to prevent external modifications
	return &State{
		CodeVerifier: flowState.CodeVerifier,
		Nonce:        flowState.Nonce,
		ReturnURL:    flowState.ReturnURL,
		CreatedAt:    flowState.CreatedAt,
	}, nil
}

// Delete removes an auth flow state
func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, state)
	return nil
}

func (r *InMemoryRepo) pruneLocked() {
	cutoff := time.Now().Add(-stateTTL)
	for key, flowState := range r.states {
		if flowState.CreatedAt.Before(cutoff) {
			delete(r.states, key)
		}
	}
}
