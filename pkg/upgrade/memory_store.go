package upgrade

import (
	"context"
	"sync"
	"time"
)

type expiring[T any] struct {
	value   T
	expires time.Time
}

func (e expiring[T]) live(now time.Time) bool {
	return now.Before(e.expires)
}

// MemoryStore is an in-process Store for single-instance deployments and tests
type MemoryStore struct {
	mu       sync.Mutex
	intents  map[string]expiring[Intent]
	sessions map[string]expiring[Session]
	locks    map[string]expiring[uint64]
	lockSeq  uint64
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		intents:  make(map[string]expiring[Intent]),
		sessions: make(map[string]expiring[Session]),
		locks:    make(map[string]expiring[uint64]),
		now:      time.Now,
	}
}

// PutIntent implements Store
func (s *MemoryStore) PutIntent(_ context.Context, merchantID string, intent Intent, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[merchantID] = expiring[Intent]{value: intent, expires: s.now().Add(ttl)}
	return nil
}

// TakeIntent implements Store
func (s *MemoryStore) TakeIntent(_ context.Context, merchantID string) (Intent, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.intents[merchantID]
	delete(s.intents, merchantID)
	if !ok || !e.live(s.now()) {
		return Intent{}, false, nil
	}
	return e.value, true, nil
}

// GetSession implements Store
func (s *MemoryStore) GetSession(_ context.Context, merchantID string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[merchantID]
	if !ok {
		return nil, false, nil
	}
	if !e.live(s.now()) {
		delete(s.sessions, merchantID)
		return nil, false, nil
	}
	session := e.value
	return &session, true, nil
}

// PutSession implements Store
func (s *MemoryStore) PutSession(_ context.Context, session *Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.MerchantID] = expiring[Session]{value: *session, expires: s.now().Add(ttl)}
	return nil
}

// DeleteSession implements Store
func (s *MemoryStore) DeleteSession(_ context.Context, merchantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, merchantID)
	return nil
}

// Lock implements Store
func (s *MemoryStore) Lock(_ context.Context, merchantID string, ttl time.Duration) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, held := s.locks[merchantID]; held && e.live(s.now()) {
		return nil, ErrInFlight
	}
	s.lockSeq++
	token := s.lockSeq
	s.locks[merchantID] = expiring[uint64]{value: token, expires: s.now().Add(ttl)}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, held := s.locks[merchantID]; held && e.value == token {
			delete(s.locks, merchantID)
		}
	}, nil
}
