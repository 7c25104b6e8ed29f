package kv

import (
	"context"
	"sort"
	"sync"
)

// Memory keeps values in process. A positive quota caps the summed size of
// keys and values, mirroring the fixed quota of browser storage.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]string
	quota  int64
	used   int64
	closed bool
}

func NewMemory(quotaBytes int64) *Memory {
	return &Memory{data: map[string]string{}, quota: quotaBytes}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	return m.SetMulti(ctx, map[string]string{key: value})
}

func (m *Memory) SetMulti(_ context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	used := m.used
	for key, value := range entries {
		if old, ok := m.data[key]; ok {
			used -= entrySize(key, old)
		}
		used += entrySize(key, value)
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}
	for key, value := range entries {
		m.data[key] = value
	}
	m.used = used
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if old, ok := m.data[key]; ok {
		m.used -= entrySize(key, old)
		delete(m.data, key)
	}
	return nil
}

func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data = map[string]string{}
	m.used = 0
	return nil
}

func (m *Memory) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
