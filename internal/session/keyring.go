package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keychain service entries are filed under
const DefaultKeyringService = "travelease"

// KeyringKV stores values in the OS keychain/credential manager
type KeyringKV struct {
	service string
}

// NewKeyringKV returns a keyring-backed store for the given service name
func NewKeyringKV(service string) *KeyringKV {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringKV{service: service}
}

func (k *KeyringKV) Get(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("keyring get %q: %w", key, err)
	}
	return value, nil
}

func (k *KeyringKV) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("keyring set %q: %w", key, err)
	}
	return nil
}

func (k *KeyringKV) Clear(key string) error {
	if err := keyring.Delete(k.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("keyring delete %q: %w", key, err)
	}
	return nil
}
