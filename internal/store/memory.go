package store

import (
	"encoding/json"
	"sync"

	"github.com/vantagepay/payment-engine/internal/model"
)

// MemoryStore provides thread-safe in-process storage for payment results.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string][]byte
}

// NewMemoryStore creates a new empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results: make(map[string][]byte),
	}
}

// Save stores a deep copy of the result so callers can keep mutating their
// value without racing readers.
func (s *MemoryStore) Save(result *model.PaymentResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ID] = data
	return nil
}

// Get retrieves a payment result by id.
func (s *MemoryStore) Get(id string) (*model.PaymentResult, bool, error) {
	s.mu.RLock()
	data, ok := s.results[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	var result model.PaymentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}
