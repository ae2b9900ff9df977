package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"permission-engine/internal/messaging/notifier"
	"permission-engine/internal/nodes"
	"permission-engine/internal/repository"
	"permission-engine/internal/repository/model"
	"permission-engine/internal/store"
)

type GroupService struct {
	logger *zap.SugaredLogger
	repo   repository.Repository
	groups *store.GroupStore
	users  *store.UserStore
	notif  notifier.Notifier
	caches CacheInvalidator

	defaultWeight int32
}

func NewGroupService(logger *zap.SugaredLogger, repo repository.Repository, groups *store.GroupStore,
	users *store.UserStore, notif notifier.Notifier, caches CacheInvalidator, defaultWeight int32) *GroupService {

	if defaultWeight < 1 {
		defaultWeight = model.BaseGroupWeight
	}
	return &GroupService{
		logger:        logger,
		repo:          repo,
		groups:        groups,
		users:         users,
		notif:         notif,
		caches:        caches,
		defaultWeight: defaultWeight,
	}
}

// CreateGroup creates a group with the given weight. A weight below 1
// falls back to the configured default. Fails on an invalid or duplicate
// name.
func (s *GroupService) CreateGroup(ctx context.Context, name string, weight int32) bool {
	name = strings.ToLower(name)
	if !model.ValidGroupName(name) {
		return false
	}
	if s.groups.Contains(name) {
		return false
	}
	if weight < 1 {
		weight = s.defaultWeight
	}

	group := &model.Group{
		Name:        name,
		Weight:      weight,
		Permissions: make([]string, 0),
		Default:     name == model.BaseGroupName,
	}

	if err := s.repo.SaveGroup(ctx, group); err != nil {
		s.logger.Errorw("failed to persist new group", "group", name, "error", err)
		return false
	}

	s.groups.Put(group)
	s.notifyGroup(ctx, name, notifier.ChangeTypeCreate)
	s.caches.InvalidateAll()
	return true
}

// DeleteGroup deletes a group and removes it from every user's permanent
// and temporary membership sets. The base group is never deletable.
func (s *GroupService) DeleteGroup(ctx context.Context, name string) bool {
	name = strings.ToLower(name)
	if name == model.BaseGroupName {
		return false
	}
	if !s.groups.Contains(name) {
		return false
	}

	if err := s.repo.DeleteGroup(ctx, name); err != nil {
		s.logger.Errorw("failed to delete group", "group", name, "error", err)
		return false
	}
	s.groups.Delete(name)

	// Membership scrub is per-record: memory is only updated for users
	// whose persist succeeded, so a failed write leaves that record
	// consistent (and the resolver skips the dangling name regardless).
	for _, user := range s.users.All() {
		if !user.RemoveGroup(name) {
			continue
		}
		if err := s.repo.SaveUser(ctx, user); err != nil {
			s.logger.Errorw("failed to persist membership removal",
				"group", name, "user", user.Id, "error", err)
			continue
		}
		s.users.Put(user)
	}

	s.notifyGroup(ctx, name, notifier.ChangeTypeDelete)
	s.caches.InvalidateAll()
	return true
}

// SetWeight updates a group's weight. Weights below 1 are invalid.
func (s *GroupService) SetWeight(ctx context.Context, name string, weight int32) bool {
	if weight < 1 {
		return false
	}
	return s.updateGroup(ctx, name, func(g *model.Group) bool {
		g.Weight = weight
		return true
	})
}

// SetPrefix sets a group's prefix; an empty value clears it.
func (s *GroupService) SetPrefix(ctx context.Context, name string, prefix string) bool {
	return s.updateGroup(ctx, name, func(g *model.Group) bool {
		g.Prefix = optional(prefix)
		return true
	})
}

// SetSuffix sets a group's suffix; an empty value clears it.
func (s *GroupService) SetSuffix(ctx context.Context, name string, suffix string) bool {
	return s.updateGroup(ctx, name, func(g *model.Group) bool {
		g.Suffix = optional(suffix)
		return true
	})
}

// SetChatFormat sets a group's chat format template; an empty value
// clears it.
func (s *GroupService) SetChatFormat(ctx context.Context, name string, format string) bool {
	return s.updateGroup(ctx, name, func(g *model.Group) bool {
		g.ChatFormat = optional(format)
		return true
	})
}

// SetTablistFormat sets a group's tablist format template; an empty value
// clears it.
func (s *GroupService) SetTablistFormat(ctx context.Context, name string, format string) bool {
	return s.updateGroup(ctx, name, func(g *model.Group) bool {
		g.TablistFormat = optional(format)
		return true
	})
}

// SetNametagFormat sets a group's nametag format template; an empty value
// clears it.
func (s *GroupService) SetNametagFormat(ctx context.Context, name string, format string) bool {
	return s.updateGroup(ctx, name, func(g *model.Group) bool {
		g.NametagFormat = optional(format)
		return true
	})
}

// AddPermission adds a permission node to a group. Fails on invalid node
// syntax, an unknown group, or a node the group already has.
func (s *GroupService) AddPermission(ctx context.Context, name string, node string) bool {
	if !nodes.Valid(node) {
		return false
	}
	return s.updateGroup(ctx, name, func(g *model.Group) bool {
		return g.AddPermission(node)
	})
}

// RemovePermission removes a permission node from a group.
func (s *GroupService) RemovePermission(ctx context.Context, name string, node string) bool {
	return s.updateGroup(ctx, name, func(g *model.Group) bool {
		return g.RemovePermission(node)
	})
}

// Group returns a snapshot of the named group.
func (s *GroupService) Group(name string) (*model.Group, bool) {
	return s.groups.Get(strings.ToLower(name))
}

// GroupsByWeight returns all groups ordered by weight descending, name
// ascending on ties.
func (s *GroupService) GroupsByWeight() []*model.Group {
	groups := s.groups.All()
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Weight != groups[j].Weight {
			return groups[i].Weight > groups[j].Weight
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

func (s *GroupService) updateGroup(ctx context.Context, name string, mutate func(*model.Group) bool) bool {
	name = strings.ToLower(name)
	group, ok := s.groups.Get(name)
	if !ok {
		return false
	}
	if !mutate(group) {
		return false
	}

	if err := s.repo.SaveGroup(ctx, group); err != nil {
		s.logger.Errorw("failed to persist group update", "group", name, "error", err)
		return false
	}

	s.groups.Put(group)
	s.notifyGroup(ctx, name, notifier.ChangeTypeModify)
	s.caches.InvalidateAll()
	return true
}

func (s *GroupService) notifyGroup(ctx context.Context, name string, changeType notifier.ChangeType) {
	if err := s.notif.GroupUpdate(ctx, name, changeType); err != nil {
		s.logger.Errorw("error sending group update notification", "group", name, "error", err)
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
