// Package store provides SafetyStore implementations. All of them share the
// same contract: one record per tab id, unconditional overwrite on put, no
// eviction. Only the background coordinator writes.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
)

// MemoryStore is the in-memory SafetyStore. It is the default backend; the
// record set is small (one entry per tab id) and ephemeral state is
// acceptable because the browser session itself is.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int]*core.SafetyRecord
	logger  *zap.Logger
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[int]*core.SafetyRecord),
		logger:  logger,
	}
}

// Put stores the record for a tab, replacing any previous one.
func (s *MemoryStore) Put(_ context.Context, tabID int, record *core.SafetyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[tabID] = record
	return nil
}

// Get retrieves the record for a tab.
func (s *MemoryStore) Get(_ context.Context, tabID int) (*core.SafetyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[tabID]
	return record, ok, nil
}
