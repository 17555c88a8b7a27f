package store

import (
	"sort"
	"sync"

	"aspirelink/pkg/domain"
)

// MemoryStore is an in-memory IdentityStore used in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]domain.IdentityUser
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]domain.IdentityUser)}
}

func (s *MemoryStore) SaveUser(u domain.IdentityUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) HasUserEmail(email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (domain.IdentityUser, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return domain.IdentityUser{}, false, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.IdentityUser, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) ListUsers() ([]domain.IdentityUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.IdentityUser, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *MemoryStore) UserCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}
