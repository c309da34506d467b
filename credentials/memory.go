package credentials

import "sync"

// MemoryStore is a thread-safe in-memory Store. It backs tests and
// environments without usable persistent storage.
type MemoryStore struct {
	mu          sync.RWMutex
	rec         Record
	unavailable bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an available in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewUnavailableStore creates a store whose backing storage is permanently
// unavailable, for exercising the no-op contract.
func NewUnavailableStore() *MemoryStore {
	return &MemoryStore{unavailable: true}
}

func (s *MemoryStore) SetAccess(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return nil
	}
	s.rec.AccessToken = token
	return nil
}

func (s *MemoryStore) SetRefresh(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return nil
	}
	s.rec.RefreshToken = token
	return nil
}

func (s *MemoryStore) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unavailable {
		return ""
	}
	return s.rec.AccessToken
}

func (s *MemoryStore) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unavailable {
		return ""
	}
	return s.rec.RefreshToken
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = Record{}
	return nil
}

func (s *MemoryStore) IsAuthenticated() bool {
	return s.Access() != ""
}
