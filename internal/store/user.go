package store

import (
	"sync"

	"github.com/google/uuid"

	"permission-engine/internal/repository/model"
)

type UserStore struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*model.User
	loaded bool
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*model.User)}
}

// Load replaces the store's contents and marks it initialized.
func (s *UserStore) Load(users []*model.User) {
	m := make(map[uuid.UUID]*model.User, len(users))
	for _, u := range users {
		m[u.Id] = u.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = m
	s.loaded = true
}

func (s *UserStore) Get(id uuid.UUID) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.mustBeLoaded()

	u, ok := s.users[id]
	return u.Clone(), ok
}

// All returns clones of every user. Order is unspecified.
func (s *UserStore) All() []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.mustBeLoaded()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	return users
}

// Ids returns every known user id. Order is unspecified.
func (s *UserStore) Ids() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.mustBeLoaded()

	ids := make([]uuid.UUID, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids
}

func (s *UserStore) Put(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Id] = u.Clone()
}

func (s *UserStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *UserStore) mustBeLoaded() {
	if !s.loaded {
		panic("user store queried before initialization")
	}
}
