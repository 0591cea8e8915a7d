package prefs

import "github.com/puzpuzpuz/xsync/v4"

type memoryBackend struct {
	values *xsync.Map[string, string]
}

func NewMemoryStore() Store {
	return typed{b: &memoryBackend{values: xsync.NewMap[string, string]()}}
}

func (m *memoryBackend) get(key string) (string, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *memoryBackend) set(key, value string) error {
	m.values.Store(key, value)
	return nil
}

func (m *memoryBackend) close() error { return nil }
