package kv

import (
	"context"
	"sync"
)

var (
	_ KeyValueStore = (*Memory)(nil)
	_ Watcher       = (*Memory)(nil)
	_ BatchWriter   = (*Memory)(nil)
)

// Memory is an in-process store. It does not survive a restart.
type Memory struct {
	values   map[string]string
	watchers map[uint64]func()
	nextID   uint64
	lock     sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		values:   make(map[string]string),
		watchers: make(map[uint64]func()),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.lock.Lock()
	m.values[key] = value
	m.lock.Unlock()

	m.notify()
	return nil
}

func (m *Memory) SetAll(_ context.Context, values map[string]string) error {
	m.lock.Lock()
	for key, value := range values {
		m.values[key] = value
	}
	m.lock.Unlock()

	m.notify()
	return nil
}

func (m *Memory) Del(_ context.Context, key string) error {
	m.lock.Lock()
	_, existed := m.values[key]
	delete(m.values, key)
	m.lock.Unlock()

	if existed {
		m.notify()
	}
	return nil
}

// Len returns the number of stored keys
func (m *Memory) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.values)
}

// Watch registers onChange until ctx is done. Writers call it synchronously
// once the write has been applied.
func (m *Memory) Watch(ctx context.Context, onChange func()) error {
	m.lock.Lock()
	m.nextID++
	id := m.nextID
	m.watchers[id] = onChange
	m.lock.Unlock()

	go func() {
		<-ctx.Done()
		m.lock.Lock()
		delete(m.watchers, id)
		m.lock.Unlock()
	}()
	return nil
}

func (m *Memory) notify() {
	m.lock.RLock()
	callbacks := make([]func(), 0, len(m.watchers))
	for _, f := range m.watchers {
		callbacks = append(callbacks, f)
	}
	m.lock.RUnlock()

	for _, f := range callbacks {
		f()
	}
}
