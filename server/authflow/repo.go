package authflow

import "time"

// State is the transient record of one in-flight SSO authorization,
// keyed by the opaque state parameter sent to the provider.
type State struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, flowState *State) error
	Get(state string) (*State, error)
	Delete(state string) error
}
