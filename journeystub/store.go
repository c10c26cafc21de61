package journeystub

import (
	"errors"
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var errNotFound = errors.New("journey not found")

// Store holds journey records by identifier.
type Store interface {
	Put(id string, record ldvalue.Value)
	Get(id string) (ldvalue.Value, error)
	Count() int
}

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]ldvalue.Value
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]ldvalue.Value)}
}

func (m *MemoryStore) Put(id string, record ldvalue.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = record
}

func (m *MemoryStore) Get(id string) (ldvalue.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[id]
	if !ok {
		return ldvalue.Null(), errNotFound
	}
	return record, nil
}

func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
