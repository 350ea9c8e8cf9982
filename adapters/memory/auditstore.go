// Package memory provides in-memory implementations for testing.
package memory

import (
	"context"
	"sync"

	"github.com/artpar/rpcgate/domain/audit"
	"github.com/artpar/rpcgate/ports"
)

// AuditStore is an in-memory implementation of ports.AuditStore.
type AuditStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// RecordBatch appends events in order.
func (s *AuditStore) RecordBatch(ctx context.Context, events []audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, events...)
	return nil
}

// Recent returns the most recent events, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}

	result := make([]audit.Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.events[i])
	}
	return result, nil
}

// Len returns the number of stored events (for testing).
func (s *AuditStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Ensure interface compliance.
var _ ports.AuditStore = (*AuditStore)(nil)
