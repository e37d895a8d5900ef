package temporal

import (
	"context"
	"sync"
)

// MockStorageService implements StorageService in memory for tests and demos
type MockStorageService struct {
	mu     sync.RWMutex
	events map[string][][]byte // gameID -> raw records in ingestion order
}

// NewMockStorageService creates an empty in-memory store
func NewMockStorageService() *MockStorageService {
	return &MockStorageService{
		events: make(map[string][][]byte),
	}
}

// AppendEvents appends records for a game, preserving arrival order
func (m *MockStorageService) AppendEvents(ctx context.Context, gameID string, events [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[gameID] = append(m.events[gameID], events...)
	return nil
}

// LoadEvents returns all records ingested for a game
func (m *MockStorageService) LoadEvents(ctx context.Context, gameID string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.events[gameID]
	out := make([][]byte, len(events))
	copy(out, events)
	return out, nil
}

// EventCount reports how many records a game has, for test assertions
func (m *MockStorageService) EventCount(gameID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events[gameID])
}
