package prefs

import (
	"errors"
	"fmt"
	"strconv"
)

const serviceName = "nativekit"

var ErrNotFound = errors.New("prefs: not found")

// Store persists the few scalar values the app remembers between launches.
type Store interface {
	GetInt(key string) (int, error)
	SetInt(key string, value int) error
	GetFloat(key string) (float64, error)
	SetFloat(key string, value float64) error
	Close() error
}

// backend stores raw strings; typed wraps it with the scalar codecs shared by
// every Store.
type backend interface {
	get(key string) (string, error)
	set(key, value string) error
	close() error
}

type typed struct {
	b backend
}

func (t typed) GetInt(key string) (int, error) {
	raw, err := t.b.get(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("prefs: decode int %q: %w", key, err)
	}
	return v, nil
}

func (t typed) SetInt(key string, value int) error {
	return t.b.set(key, strconv.Itoa(value))
}

func (t typed) GetFloat(key string) (float64, error) {
	raw, err := t.b.get(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("prefs: decode float %q: %w", key, err)
	}
	return v, nil
}

func (t typed) SetFloat(key string, value float64) error {
	return t.b.set(key, strconv.FormatFloat(value, 'g', -1, 64))
}

func (t typed) Close() error {
	return t.b.close()
}

// IntOr returns the stored int, or def when it is missing or unreadable.
func IntOr(s Store, key string, def int) int {
	v, err := s.GetInt(key)
	if err != nil {
		return def
	}
	return v
}

func FloatOr(s Store, key string, def float64) float64 {
	v, err := s.GetFloat(key)
	if err != nil {
		return def
	}
	return v
}

const (
	BackendKeyring = "keyring"
	BackendBadger  = "badger"
	BackendMemory  = "memory"
)

// Open builds the store named by kind. path is only used by the badger
// backend.
func Open(kind, path string) (Store, error) {
	switch kind {
	case BackendKeyring:
		return NewKeyringStore(), nil
	case BackendBadger:
		return OpenBadger(path)
	case BackendMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("prefs: unknown backend %q", kind)
	}
}
