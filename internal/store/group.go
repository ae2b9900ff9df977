// Package store holds the in-memory authoritative state the resolver reads
// from. Stores are loaded from the repository at startup (and on reload)
// and mutated only by the services, which write through to the repository
// first. Reads return clones so no caller ever shares mutable state.
package store

import (
	"sort"
	"sync"

	"permission-engine/internal/repository/model"
)

type GroupStore struct {
	mu     sync.RWMutex
	groups map[string]*model.Group
	loaded bool
}

func NewGroupStore() *GroupStore {
	return &GroupStore{groups: make(map[string]*model.Group)}
}

// Load replaces the store's contents and marks it initialized.
func (s *GroupStore) Load(groups []*model.Group) {
	m := make(map[string]*model.Group, len(groups))
	for _, g := range groups {
		m[g.Name] = g.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = m
	s.loaded = true
}

func (s *GroupStore) Get(name string) (*model.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.mustBeLoaded()

	g, ok := s.groups[name]
	return g.Clone(), ok
}

func (s *GroupStore) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.mustBeLoaded()

	_, ok := s.groups[name]
	return ok
}

// All returns clones of every group, sorted by name for determinism.
func (s *GroupStore) All() []*model.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.mustBeLoaded()

	groups := make([]*model.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g.Clone())
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

func (s *GroupStore) Put(g *model.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.Name] = g.Clone()
}

func (s *GroupStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, name)
}

func (s *GroupStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.groups)
}

// mustBeLoaded guards against querying before initialization, which is a
// startup-ordering bug and should fail loudly.
func (s *GroupStore) mustBeLoaded() {
	if !s.loaded {
		panic("group store queried before initialization")
	}
}
