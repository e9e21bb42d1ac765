package checkout

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node setups
// running without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uint]memoryEntry
}

type memoryEntry struct {
	staging   Staging
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[uint]memoryEntry),
	}
}

func (s *MemoryStore) get(userID uint) (Staging, bool) {
	entry, ok := s.entries[userID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, userID)
		return Staging{}, false
	}
	return entry.staging, true
}

func (s *MemoryStore) put(userID uint, staging Staging) {
	s.entries[userID] = memoryEntry{
		staging:   staging,
		expiresAt: time.Now().Add(s.ttl),
	}
}

func (s *MemoryStore) StagePayment(_ context.Context, userID uint, method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staging, _ := s.get(userID)
	staging.PaymentMethod = method
	s.put(userID, staging)
	return nil
}

func (s *MemoryStore) StageDelivery(_ context.Context, userID uint, date, timeOfDay string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staging, _ := s.get(userID)
	staging.DeliveryDate = date
	staging.DeliveryTime = timeOfDay
	s.put(userID, staging)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID uint) (*Staging, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staging, ok := s.get(userID)
	if !ok {
		return nil, ErrNotStaged
	}
	return &staging, nil
}

func (s *MemoryStore) Clear(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, userID)
	return nil
}
