package workspace

import (
	"maps"
	"slices"
	"sync"
)

// Memory is a map-backed Area for tests and throwaway repositories.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ Area = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

func (m *Memory) ReadFile(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[name]
	if !ok {
		return nil, notExist(name)
	}
	return slices.Clone(data), nil
}

func (m *Memory) WriteFile(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[name] = append([]byte{}, data...)
	return nil
}

func (m *Memory) DeleteFile(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.files, name)
	return nil
}

func (m *Memory) ListFiles() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.files)), nil
}

func (m *Memory) Exists(name string) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.files[name]
	return ok, nil
}
