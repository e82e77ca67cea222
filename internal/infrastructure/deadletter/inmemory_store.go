package deadletter

import (
	"context"
	"sync"

	"github.com/erp/shipping/internal/domain/shipping"
)

// InMemoryDeadLetterStore implements DeadLetterStore with a bounded in-process
// ring. Suitable for single-instance deployments and testing.
// WARNING: letters do not survive restarts and are not shared across
// instances.
type InMemoryDeadLetterStore struct {
	mu         sync.RWMutex
	letters    []shipping.DeadLetter
	maxEntries int
}

// NewInMemoryDeadLetterStore creates a new in-memory dead letter store
func NewInMemoryDeadLetterStore() *InMemoryDeadLetterStore {
	return &InMemoryDeadLetterStore{
		letters:    make([]shipping.DeadLetter, 0),
		maxEntries: defaultMaxEntries,
	}
}

// Push records an unroutable delivery, dropping the oldest entry past the cap
func (s *InMemoryDeadLetterStore) Push(ctx context.Context, letter shipping.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.letters = append(s.letters, letter)
	if len(s.letters) > s.maxEntries {
		s.letters = s.letters[len(s.letters)-s.maxEntries:]
	}
	return nil
}

// Recent returns up to limit letters, newest first
func (s *InMemoryDeadLetterStore) Recent(ctx context.Context, limit int) ([]shipping.DeadLetter, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := limit
	if count > len(s.letters) {
		count = len(s.letters)
	}

	result := make([]shipping.DeadLetter, 0, count)
	for i := len(s.letters) - 1; i >= 0 && len(result) < count; i-- {
		result = append(result, s.letters[i])
	}
	return result, nil
}

// Len returns the number of stored letters (for testing/monitoring)
func (s *InMemoryDeadLetterStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.letters)
}

// Ensure InMemoryDeadLetterStore implements DeadLetterStore interface
var _ shipping.DeadLetterStore = (*InMemoryDeadLetterStore)(nil)
