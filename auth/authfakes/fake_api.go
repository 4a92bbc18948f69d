package authfakes

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/brainbin/go-web-gateway/api"
	"github.com/brainbin/go-web-gateway/auth"
)

var _ auth.API = (*FakeAPI)(nil)

// FakeAPI is an in-memory stand-in for the backend client. Each
// operation returns the preconfigured result and records its calls.
type FakeAPI struct {
	lock sync.Mutex

	LoginResult    *api.TokenPair
	LoginErr       error
	RegisterResult *api.RegisterResult
	RegisterErr    error
	RefreshResult  *api.TokenPair
	RefreshErr     error
	LogoutErr      error

	LoginCalls    int
	RegisterCalls int
	RefreshCalls  int
	LogoutCalls   int
	LogoutTokens  []string

	// When set, Refresh signals RefreshStarted and then waits for
	// RefreshRelease before returning. Lets tests hold an exchange
	// in flight.
	RefreshStarted chan struct{}
	RefreshRelease chan struct{}
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{}
}

func (f *FakeAPI) Login(_ context.Context, email, password string) (*api.TokenPair, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.LoginCalls++
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	if f.LoginResult == nil {
		return nil, errors.New("no login result configured")
	}
	return f.LoginResult, nil
}

func (f *FakeAPI) Register(_ context.Context, email, password string) (*api.RegisterResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.RegisterCalls++
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	if f.RegisterResult == nil {
		return nil, errors.New("no register result configured")
	}
	return f.RegisterResult, nil
}

func (f *FakeAPI) Refresh(_ context.Context, refreshToken string) (*api.TokenPair, error) {
	f.lock.Lock()
	f.RefreshCalls++
	started, release := f.RefreshStarted, f.RefreshRelease
	f.lock.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	if f.RefreshResult == nil {
		return nil, errors.New("no refresh result configured")
	}
	return f.RefreshResult, nil
}

func (f *FakeAPI) Logout(_ context.Context, accessToken string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.LogoutCalls++
	f.LogoutTokens = append(f.LogoutTokens, accessToken)
	return f.LogoutErr
}
