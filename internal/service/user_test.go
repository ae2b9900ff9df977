package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"permission-engine/internal/repository/model"
)

func TestUserService_EnsureUserExists(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	id := uuid.New()
	user := f.userService.EnsureUserExists(ctx, id, "steve")
	assert.Equal(t, "steve", user.Username)
	assert.Equal(t, []string{model.BaseGroupName}, user.Groups)

	// Idempotent; a changed username is refreshed in place.
	again := f.userService.EnsureUserExists(ctx, id, "steve")
	assert.Equal(t, user.Id, again.Id)

	renamed := f.userService.EnsureUserExists(ctx, id, "Steve_")
	assert.Equal(t, "Steve_", renamed.Username)

	stored, ok := f.users.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "Steve_", stored.Username)
}

func TestUserService_EnsureUserExistsRepairsBaseGroup(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()

	id := uuid.New()
	f.users.Put(&model.User{Id: id, Username: "steve", Groups: []string{"vip"}})

	user := f.userService.EnsureUserExists(context.Background(), id, "steve")
	assert.True(t, user.HasGroup(model.BaseGroupName))
}

func TestUserService_EnsureUserExistsPersistFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	id := uuid.New()
	user := f.userService.EnsureUserExists(context.Background(), id, "steve")
	assert.NotNil(t, user)

	// The record is not committed; the next observation retries.
	_, ok := f.users.Get(id)
	assert.False(t, ok)
}

func TestUserService_AddUserToGroup(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	f.groupService.CreateGroup(ctx, "vip", 20)

	id := uuid.New()
	assert.True(t, f.userService.AddUserToGroup(ctx, id, "VIP"))
	assert.False(t, f.userService.AddUserToGroup(ctx, id, "vip"))
	assert.False(t, f.userService.AddUserToGroup(ctx, id, "never-created"))

	// First mutation created the record lazily.
	user, ok := f.users.Get(id)
	assert.True(t, ok)
	assert.True(t, user.HasGroup("vip"))
	assert.True(t, user.HasGroup(model.BaseGroupName))
}

func TestUserService_AddUserToTemporaryGroup(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	f.groupService.CreateGroup(ctx, "event", 5)

	now := time.Unix(1_000_000, 0)
	f.userService.SetNowFunc(func() time.Time { return now })

	id := uuid.New()
	assert.False(t, f.userService.AddUserToTemporaryGroup(ctx, id, "event", now))
	assert.False(t, f.userService.AddUserToTemporaryGroup(ctx, id, "event", now.Add(-time.Minute)))
	assert.True(t, f.userService.AddUserToTemporaryGroup(ctx, id, "event", now.Add(time.Hour)))

	user, _ := f.users.Get(id)
	assert.True(t, user.HasTemporaryGroup("event"))
}

func TestUserService_TemporaryBaseMembershipRefused(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	now := time.Unix(1_000_000, 0)
	f.userService.SetNowFunc(func() time.Time { return now })

	id := uuid.New()
	f.userService.EnsureUserExists(ctx, id, "steve")

	// The base membership must stay permanent; allowing this would drop
	// the user out of base once the grant expires.
	assert.False(t, f.userService.AddUserToTemporaryGroup(ctx, id, model.BaseGroupName, now.Add(time.Second)))

	user, _ := f.users.Get(id)
	assert.True(t, user.HasGroup(model.BaseGroupName))
	assert.False(t, user.HasTemporaryGroup(model.BaseGroupName))
	assert.Contains(t, user.ActiveGroups(now.Add(time.Hour).Unix()), model.BaseGroupName)
}

func TestUserService_RemoveUserFromGroup(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	f.groupService.CreateGroup(ctx, "vip", 20)

	id := uuid.New()
	f.userService.AddUserToGroup(ctx, id, "vip")

	assert.False(t, f.userService.RemoveUserFromGroup(ctx, id, model.BaseGroupName))
	assert.True(t, f.userService.RemoveUserFromGroup(ctx, id, "vip"))
	assert.False(t, f.userService.RemoveUserFromGroup(ctx, id, "vip"))
}

func TestUserService_Permissions(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	id := uuid.New()
	assert.True(t, f.userService.AddUserPermission(ctx, id, "fly"))
	assert.False(t, f.userService.AddUserPermission(ctx, id, "fly"))
	assert.False(t, f.userService.AddUserPermission(ctx, id, "bad node"))

	assert.True(t, f.userService.RemoveUserPermission(ctx, id, "fly"))
	assert.False(t, f.userService.RemoveUserPermission(ctx, id, "fly"))
}

func TestUserService_TemporaryPermissionExpiryValidation(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	now := time.Unix(1_000_000, 0)
	f.userService.SetNowFunc(func() time.Time { return now })

	id := uuid.New()
	assert.False(t, f.userService.AddUserTemporaryPermission(ctx, id, "fly", now))
	assert.True(t, f.userService.AddUserTemporaryPermission(ctx, id, "fly", now.Add(time.Hour)))
	assert.False(t, f.userService.AddUserTemporaryPermission(ctx, id, "bad node", now.Add(time.Hour)))
}

func TestUserService_MutationPersistFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	id := uuid.New()
	assert.False(t, f.userService.AddUserPermission(context.Background(), id, "fly"))
	_, ok := f.users.Get(id)
	assert.False(t, ok)
}

func TestUserService_CleanupExpired(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	f.groupService.CreateGroup(ctx, "event", 5)

	now := time.Unix(1_000_000, 0)
	f.userService.SetNowFunc(func() time.Time { return now })

	id := uuid.New()
	f.userService.AddUserToTemporaryGroup(ctx, id, "event", now.Add(time.Minute))
	f.userService.AddUserTemporaryPermission(ctx, id, "fly", now.Add(time.Minute))
	f.userService.AddUserTemporaryPermission(ctx, id, "tp", now.Add(time.Hour))

	assert.Equal(t, 0, f.userService.CleanupExpiredPermissions(ctx, id))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, f.userService.CleanupAllExpired(ctx))
	assert.Equal(t, 0, f.userService.CleanupAllExpired(ctx))

	user, _ := f.users.Get(id)
	assert.Empty(t, user.TempGroups)
	assert.Len(t, user.TempPermissions, 1)
}

func TestUserService_UserGroupsAndPermissions(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	f.groupService.CreateGroup(ctx, "vip", 20)

	id := uuid.New()
	assert.Equal(t, []string{model.BaseGroupName}, f.userService.UserGroups(id))
	assert.Empty(t, f.userService.UserPermissions(id))

	f.userService.AddUserToGroup(ctx, id, "vip")
	f.userService.AddUserPermission(ctx, id, "fly")

	assert.ElementsMatch(t, []string{model.BaseGroupName, "vip"}, f.userService.UserGroups(id))
	assert.Equal(t, []string{"fly"}, f.userService.UserPermissions(id))
}

func TestUserService_RemoveUser(t *testing.T) {
	f := newServiceFixture(t)
	f.expectSaves()
	ctx := context.Background()

	id := uuid.New()
	f.userService.EnsureUserExists(ctx, id, "steve")

	f.repo.EXPECT().DeleteUser(gomock.Any(), id).Return(nil)
	assert.True(t, f.userService.RemoveUser(ctx, id))
	_, ok := f.users.Get(id)
	assert.False(t, ok)

	f.repo.EXPECT().DeleteUser(gomock.Any(), id).Return(errors.New("db down"))
	assert.False(t, f.userService.RemoveUser(ctx, id))
}
