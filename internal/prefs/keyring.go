package prefs

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

type keyringBackend struct{}

// NewKeyringStore keeps values in the OS credential store, one entry per key.
func NewKeyringStore() Store {
	return typed{b: keyringBackend{}}
}

func (keyringBackend) get(key string) (string, error) {
	val, err := keyring.Get(serviceName, "prefs:"+key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return val, nil
}

func (keyringBackend) set(key, value string) error {
	if err := keyring.Set(serviceName, "prefs:"+key, value); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (keyringBackend) close() error { return nil }

// DeleteKeyring removes key. Missing keys are not an error.
func DeleteKeyring(key string) {
	_ = keyring.Delete(serviceName, "prefs:"+key)
}
