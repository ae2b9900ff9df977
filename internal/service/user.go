package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"permission-engine/internal/messaging/notifier"
	"permission-engine/internal/nodes"
	"permission-engine/internal/repository"
	"permission-engine/internal/repository/model"
	"permission-engine/internal/store"
)

type UserService struct {
	logger *zap.SugaredLogger
	repo   repository.Repository
	groups *store.GroupStore
	users  *store.UserStore
	notif  notifier.Notifier
	caches CacheInvalidator

	nowFn func() time.Time
}

func NewUserService(logger *zap.SugaredLogger, repo repository.Repository, groups *store.GroupStore,
	users *store.UserStore, notif notifier.Notifier, caches CacheInvalidator) *UserService {

	return &UserService{
		logger: logger,
		repo:   repo,
		groups: groups,
		users:  users,
		notif:  notif,
		caches: caches,
		nowFn:  time.Now,
	}
}

// SetNowFunc overrides the service's clock. Test hook.
func (s *UserService) SetNowFunc(nowFn func() time.Time) {
	s.nowFn = nowFn
}

// EnsureUserExists creates the user if absent, repairs a missing base
// membership and refreshes the stored username. Idempotent; always
// returns a snapshot of the user.
func (s *UserService) EnsureUserExists(ctx context.Context, id uuid.UUID, username string) *model.User {
	user, ok := s.users.Get(id)
	changed := false
	created := false
	if !ok {
		user = model.NewUser(id, username, s.nowFn().Unix())
		changed = true
		created = true
	} else {
		changed = user.EnsureBaseGroup()
		if username != "" && user.Username != username {
			user.Username = username
			changed = true
		}
	}

	if !changed {
		return user
	}

	user.LastUpdated = s.nowFn().Unix()
	if err := s.repo.SaveUser(ctx, user); err != nil {
		// Next observation of the user retries the persist.
		s.logger.Errorw("failed to persist user", "user", id, "error", err)
		return user
	}

	s.users.Put(user)
	s.caches.InvalidateUser(id)
	if created {
		s.notifyUser(ctx, id, notifier.ChangeTypeCreate)
	}
	return user
}

// AddUserToGroup grants a permanent membership. Fails for an unknown
// group or an already-present permanent membership.
func (s *UserService) AddUserToGroup(ctx context.Context, id uuid.UUID, group string) bool {
	group = strings.ToLower(group)
	if !s.groups.Contains(group) {
		return false
	}
	return s.mutateUser(ctx, id, func(u *model.User) bool {
		return u.AddGroup(group)
	})
}

// AddUserToTemporaryGroup grants a membership that expires at the given
// time. Rejects expiries that are not in the future. The base membership
// is permanent and can never be converted to a temporary one.
func (s *UserService) AddUserToTemporaryGroup(ctx context.Context, id uuid.UUID, group string, expiry time.Time) bool {
	group = strings.ToLower(group)
	if group == model.BaseGroupName {
		return false
	}
	if !s.groups.Contains(group) {
		return false
	}
	if expiry.Unix() <= s.nowFn().Unix() {
		return false
	}
	return s.mutateUser(ctx, id, func(u *model.User) bool {
		u.AddTemporaryGroup(group, expiry.Unix())
		return true
	})
}

// RemoveUserFromGroup removes both the permanent and temporary membership
// for the group. The base group cannot be removed.
func (s *UserService) RemoveUserFromGroup(ctx context.Context, id uuid.UUID, group string) bool {
	group = strings.ToLower(group)
	if group == model.BaseGroupName {
		return false
	}
	return s.mutateUser(ctx, id, func(u *model.User) bool {
		return u.RemoveGroup(group)
	})
}

// AddUserPermission grants an individual permanent permission.
func (s *UserService) AddUserPermission(ctx context.Context, id uuid.UUID, node string) bool {
	if !nodes.Valid(node) {
		return false
	}
	return s.mutateUser(ctx, id, func(u *model.User) bool {
		return u.AddPermission(node)
	})
}

// AddUserTemporaryPermission grants an individual permission that expires
// at the given time. Rejects expiries that are not in the future.
func (s *UserService) AddUserTemporaryPermission(ctx context.Context, id uuid.UUID, node string, expiry time.Time) bool {
	if !nodes.Valid(node) {
		return false
	}
	if expiry.Unix() <= s.nowFn().Unix() {
		return false
	}
	return s.mutateUser(ctx, id, func(u *model.User) bool {
		u.AddTemporaryPermission(node, expiry.Unix())
		return true
	})
}

// RemoveUserPermission removes an individual permission, permanent or
// temporary.
func (s *UserService) RemoveUserPermission(ctx context.Context, id uuid.UUID, node string) bool {
	return s.mutateUser(ctx, id, func(u *model.User) bool {
		return u.RemovePermission(node)
	})
}

// CleanupExpiredPermissions removes the user's expired temporary groups
// and permissions from storage and returns how many were removed.
func (s *UserService) CleanupExpiredPermissions(ctx context.Context, id uuid.UUID) int {
	user, ok := s.users.Get(id)
	if !ok {
		return 0
	}

	removed := user.RemoveExpired(s.nowFn().Unix())
	if removed == 0 {
		return 0
	}

	user.LastUpdated = s.nowFn().Unix()
	if err := s.repo.SaveUser(ctx, user); err != nil {
		// Entries stay expired-but-present; reads filter them lazily and
		// the next cleanup pass retries.
		s.logger.Errorw("failed to persist expiry cleanup", "user", id, "error", err)
		return 0
	}

	s.users.Put(user)
	s.caches.InvalidateUser(id)
	return removed
}

// CleanupAllExpired runs the expiry cleanup over every known user and
// returns the total number of removed entries. Driven by the app's
// periodic task.
func (s *UserService) CleanupAllExpired(ctx context.Context) int {
	total := 0
	for _, id := range s.users.Ids() {
		total += s.CleanupExpiredPermissions(ctx, id)
	}
	return total
}

// UserGroups returns the user's currently-active group names. Unknown
// users have only the base group.
func (s *UserService) UserGroups(id uuid.UUID) []string {
	user, ok := s.users.Get(id)
	if !ok {
		return []string{model.BaseGroupName}
	}
	return user.ActiveGroups(s.nowFn().Unix())
}

// UserPermissions returns the user's currently-active individual
// permissions.
func (s *UserService) UserPermissions(id uuid.UUID) []string {
	user, ok := s.users.Get(id)
	if !ok {
		return []string{}
	}
	return user.ActivePermissions(s.nowFn().Unix())
}

// RemoveUser deletes a user record entirely. Administrative use only;
// the user is recreated with base-only grants on next observation.
func (s *UserService) RemoveUser(ctx context.Context, id uuid.UUID) bool {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		s.logger.Errorw("failed to delete user", "user", id, "error", err)
		return false
	}

	s.users.Delete(id)
	s.caches.InvalidateUser(id)
	s.notifyUser(ctx, id, notifier.ChangeTypeDelete)
	return true
}

// mutateUser applies a mutation to the user's record, creating the record
// lazily if this is the first time the user is observed. The mutation is
// committed to memory only after the persist succeeds.
func (s *UserService) mutateUser(ctx context.Context, id uuid.UUID, mutate func(*model.User) bool) bool {
	user, ok := s.users.Get(id)
	if !ok {
		user = model.NewUser(id, "", s.nowFn().Unix())
	}
	if !mutate(user) {
		return false
	}

	user.LastUpdated = s.nowFn().Unix()
	if err := s.repo.SaveUser(ctx, user); err != nil {
		s.logger.Errorw("failed to persist user update", "user", id, "error", err)
		return false
	}

	s.users.Put(user)
	s.caches.InvalidateUser(id)
	s.notifyUser(ctx, id, notifier.ChangeTypeModify)
	return true
}

func (s *UserService) notifyUser(ctx context.Context, id uuid.UUID, changeType notifier.ChangeType) {
	if err := s.notif.UserUpdate(ctx, id, changeType); err != nil {
		s.logger.Errorw("error sending user update notification", "user", id, "error", err)
	}
}
