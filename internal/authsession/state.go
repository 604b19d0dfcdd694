package authsession

import (
	"github.com/travelease-dev/travelease/internal/models"
)

// State is the tri-state authentication status of the device
type State int

const (
	// StateLoading means startup validation has not settled yet
	StateLoading State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON view-models
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent view of the session at one instant
type Snapshot struct {
	State State
	User  *models.User
}

// Settled reports whether startup validation (or a later login/logout) has
// produced a final state
func (s Snapshot) Settled() bool {
	return s.State != StateLoading
}

// Authenticated reports whether a current user is present
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// IsAdmin reports whether the current user holds the admin role.
// It is false while loading.
func (s Snapshot) IsAdmin() bool {
	return s.Authenticated() && s.User.IsAdmin()
}
