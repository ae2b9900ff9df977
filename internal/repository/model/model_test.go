package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"permission-engine/internal/utils"
)

func TestValidGroupName(t *testing.T) {
	valid := []string{"base", "vip", "VIP", "mod-2", "a_b", "x"}
	for _, name := range valid {
		assert.True(t, ValidGroupName(name), name)
	}

	invalid := []string{"", "has space", "dot.ted", "waytoolong-waytoolong-waytoolong-waytoolong-waytool", "näme"}
	for _, name := range invalid {
		assert.False(t, ValidGroupName(name), name)
	}
}

func TestGroup_Clone(t *testing.T) {
	group := &Group{
		Name:        "vip",
		Weight:      20,
		Permissions: []string{"fly"},
		Prefix:      utils.PointerOf("[VIP]"),
	}

	clone := group.Clone()
	clone.Permissions[0] = "changed"
	*clone.Prefix = "changed"
	clone.Weight = 99

	assert.Equal(t, []string{"fly"}, group.Permissions)
	assert.Equal(t, "[VIP]", *group.Prefix)
	assert.Equal(t, int32(20), group.Weight)
}

func TestGroup_Permissions(t *testing.T) {
	group := NewBaseGroup()

	assert.True(t, group.AddPermission("fly"))
	assert.False(t, group.AddPermission("fly"))
	assert.True(t, group.HasPermission("fly"))

	assert.True(t, group.RemovePermission("fly"))
	assert.False(t, group.RemovePermission("fly"))
	assert.False(t, group.HasPermission("fly"))
}

func TestTemporaryGrant_ActiveAt(t *testing.T) {
	grant := TemporaryGrant{Name: "vip", Expiry: 1000}

	assert.True(t, grant.ActiveAt(999))
	assert.False(t, grant.ActiveAt(1000))
	assert.False(t, grant.ActiveAt(1001))
}

func TestNewUser_HasBaseGroup(t *testing.T) {
	user := NewUser(uuid.New(), "steve", 100)
	assert.Equal(t, []string{BaseGroupName}, user.Groups)
	assert.Equal(t, int64(100), user.LastUpdated)
}

func TestUser_EnsureBaseGroup(t *testing.T) {
	user := &User{Id: uuid.New(), Groups: []string{"vip"}}

	assert.True(t, user.EnsureBaseGroup())
	assert.False(t, user.EnsureBaseGroup())
	assert.Equal(t, []string{"vip", BaseGroupName}, user.Groups)
}

func TestUser_GroupMembership(t *testing.T) {
	user := NewUser(uuid.New(), "steve", 0)

	assert.True(t, user.AddGroup("vip"))
	assert.False(t, user.AddGroup("vip"))
	assert.True(t, user.HasGroup("vip"))

	// Temporary membership replaces the permanent one.
	user.AddTemporaryGroup("vip", 1000)
	assert.False(t, user.HasGroup("vip"))
	assert.True(t, user.HasTemporaryGroup("vip"))

	// And adding permanently drops the temporary entry again.
	assert.True(t, user.AddGroup("vip"))
	assert.False(t, user.HasTemporaryGroup("vip"))

	assert.True(t, user.RemoveGroup("vip"))
	assert.False(t, user.RemoveGroup("vip"))
}

func TestUser_ActiveGroups(t *testing.T) {
	user := NewUser(uuid.New(), "steve", 0)
	user.AddGroup("vip")
	user.AddTemporaryGroup("event", 1000)

	assert.ElementsMatch(t, []string{BaseGroupName, "vip", "event"}, user.ActiveGroups(999))
	assert.ElementsMatch(t, []string{BaseGroupName, "vip"}, user.ActiveGroups(1001))
}

func TestUser_Permissions(t *testing.T) {
	user := NewUser(uuid.New(), "steve", 0)

	assert.True(t, user.AddPermission("fly"))
	assert.False(t, user.AddPermission("fly"))

	user.AddTemporaryPermission("fly", 1000)
	assert.False(t, user.HasPermission("fly"))
	assert.ElementsMatch(t, []string{"fly"}, user.ActivePermissions(999))
	assert.Empty(t, user.ActivePermissions(1001))

	assert.True(t, user.RemovePermission("fly"))
	assert.False(t, user.RemovePermission("fly"))
}

func TestUser_RemoveExpired(t *testing.T) {
	user := NewUser(uuid.New(), "steve", 0)
	user.AddTemporaryGroup("event", 1000)
	user.AddTemporaryGroup("other", 2000)
	user.AddTemporaryPermission("fly", 1000)

	assert.Equal(t, 0, user.RemoveExpired(500))
	assert.Equal(t, 2, user.RemoveExpired(1500))
	assert.Len(t, user.TempGroups, 1)
	assert.Empty(t, user.TempPermissions)
}

func TestUser_Clone(t *testing.T) {
	user := NewUser(uuid.New(), "steve", 0)
	user.AddGroup("vip")
	user.AddTemporaryPermission("fly", 1000)

	clone := user.Clone()
	clone.Groups[0] = "changed"
	clone.TempPermissions[0].Expiry = 9999
	clone.Username = "alex"

	assert.Equal(t, BaseGroupName, user.Groups[0])
	assert.Equal(t, int64(1000), user.TempPermissions[0].Expiry)
	assert.Equal(t, "steve", user.Username)
}
