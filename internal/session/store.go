// Package session persists the device's single session token behind a small
// key/value interface so the durable medium can be swapped.
package session

import (
	"errors"
	"fmt"
	"strings"
)

// TokenKey is the well-known key the session token is stored under
const TokenKey = "token"

var (
	// ErrNotFound is returned by KV.Get when the key holds no value
	ErrNotFound = errors.New("key not found")

	// ErrNoToken is returned by Store.GetToken when the device is logged out
	ErrNoToken = errors.New("no session token stored")
)

// KV is the minimal durable key/value medium a Store needs.
// Clear must not fail when the key is already absent.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Clear(key string) error
}

// Store owns the session token. Only the auth session manager writes to it.
type Store struct {
	kv  KV
	key string
}

// NewStore creates a token store on top of kv
func NewStore(kv KV) *Store {
	return &Store{kv: kv, key: TokenKey}
}

// GetToken returns the stored token, or ErrNoToken when none is stored
func (s *Store) GetToken() (string, error) {
	token, err := s.kv.Get(s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Token implements the request client's token source. Storage failures are
// reported as "no token" so the request goes out unauthenticated.
func (s *Store) Token() (string, bool) {
	token, err := s.GetToken()
	if err != nil {
		return "", false
	}
	return token, true
}

// SetToken overwrites any existing token
func (s *Store) SetToken(token string) error {
	if token == "" {
		return errors.New("refusing to store an empty token")
	}
	if err := s.kv.Set(s.key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// ClearToken removes the stored token. It is safe to call when logged out.
func (s *Store) ClearToken() error {
	if err := s.kv.Clear(s.key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
