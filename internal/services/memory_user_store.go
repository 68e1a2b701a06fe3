package services

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/imaginify/user-service/internal/apperror"
	"github.com/imaginify/user-service/model"
)

// MemoryUserStore is an in-memory UserStore with the same error taxonomy
// and increment semantics as the Arango-backed store. Used by tests and
// for running the service without a database.
type MemoryUserStore struct {
	mu             sync.Mutex
	nextKey        int
	byKey          map[string]model.User
	keyByClerkID   map[string]string
	defaultCredits int
}

var _ UserStore = (*MemoryUserStore)(nil)

func NewMemoryUserStore(defaultCredits int) *MemoryUserStore {
	return &MemoryUserStore{
		nextKey:        1,
		byKey:          make(map[string]model.User),
		keyByClerkID:   make(map[string]string),
		defaultCredits: defaultCredits,
	}
}

func (s *MemoryUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keyByClerkID[u.ClerkID]; exists {
		return model.User{}, apperror.Duplicate("user", u.ClerkID)
	}

	now := time.Now().UTC()
	u.Key = strconv.Itoa(s.nextKey)
	s.nextKey++
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.CreditBalance == 0 {
		u.CreditBalance = s.defaultCredits
	}

	s.byKey[u.Key] = u
	s.keyByClerkID[u.ClerkID] = u.Key
	return u, nil
}

func (s *MemoryUserStore) GetByClerkID(_ context.Context, clerkID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyByClerkID[clerkID]
	if !ok {
		return model.User{}, apperror.NotFound("user", clerkID)
	}
	return s.byKey[key], nil
}

func (s *MemoryUserStore) Update(_ context.Context, clerkID string, upd model.UserUpdate) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyByClerkID[clerkID]
	if !ok {
		return model.User{}, apperror.NotFound("user", clerkID)
	}

	u := s.byKey[key]
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Photo != nil {
		u.Photo = *upd.Photo
	}
	u.UpdatedAt = time.Now().UTC()
	s.byKey[key] = u
	return u, nil
}

func (s *MemoryUserStore) Delete(_ context.Context, clerkID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyByClerkID[clerkID]
	if !ok {
		return model.User{}, apperror.NotFound("user", clerkID)
	}

	u := s.byKey[key]
	delete(s.byKey, key)
	delete(s.keyByClerkID, clerkID)
	return u, nil
}

func (s *MemoryUserStore) AddCredits(_ context.Context, key string, delta int) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byKey[key]
	if !ok {
		return model.User{}, apperror.NotFound("user", key)
	}

	u.CreditBalance += delta
	u.UpdatedAt = time.Now().UTC()
	s.byKey[key] = u
	return u, nil
}

func (s *MemoryUserStore) List(_ context.Context, limit int) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	users := make([]model.User, 0, len(s.byKey))
	for _, u := range s.byKey {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			ki, _ := strconv.Atoi(users[i].Key)
			kj, _ := strconv.Atoi(users[j].Key)
			return ki > kj
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
