package model

import (
	"regexp"

	"github.com/google/uuid"
)

// BaseGroupName is the distinguished default group. Exactly one group has
// this name; it always exists, is flagged Default and is never deletable.
const BaseGroupName = "base"

// BaseGroupWeight is the weight the base group is created with.
const BaseGroupWeight = int32(1)

var groupNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)

// ValidGroupName reports whether name is a legal group name.
func ValidGroupName(name string) bool {
	return groupNamePattern.MatchString(name)
}

type Group struct {
	Name          string   `bson:"_id" json:"name"`
	Weight        int32    `bson:"weight" json:"weight"`
	Permissions   []string `bson:"permissions" json:"permissions"`
	Prefix        *string  `bson:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix        *string  `bson:"suffix,omitempty" json:"suffix,omitempty"`
	ChatFormat    *string  `bson:"chatFormat,omitempty" json:"chatFormat,omitempty"`
	TablistFormat *string  `bson:"tablistFormat,omitempty" json:"tablistFormat,omitempty"`
	NametagFormat *string  `bson:"nametagFormat,omitempty" json:"nametagFormat,omitempty"`
	Default       bool     `bson:"isDefault" json:"isDefault"`
}

func NewBaseGroup() *Group {
	return &Group{
		Name:        BaseGroupName,
		Weight:      BaseGroupWeight,
		Permissions: make([]string, 0),
		Default:     true,
	}
}

func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Permissions = append([]string(nil), g.Permissions...)
	clone.Prefix = clonePtr(g.Prefix)
	clone.Suffix = clonePtr(g.Suffix)
	clone.ChatFormat = clonePtr(g.ChatFormat)
	clone.TablistFormat = clonePtr(g.TablistFormat)
	clone.NametagFormat = clonePtr(g.NametagFormat)
	return &clone
}

func (g *Group) HasPermission(node string) bool {
	return contains(g.Permissions, node)
}

// AddPermission appends node to the group's permission set. Returns false
// if the node was already present.
func (g *Group) AddPermission(node string) bool {
	if g.HasPermission(node) {
		return false
	}
	g.Permissions = append(g.Permissions, node)
	return true
}

// RemovePermission removes node from the group's permission set. Returns
// false if the node was not present.
func (g *Group) RemovePermission(node string) bool {
	if !contains(g.Permissions, node) {
		return false
	}
	g.Permissions = remove(g.Permissions, node)
	return true
}

// TemporaryGrant is a group membership or individual permission that stops
// being active once Expiry (epoch seconds) is reached.
type TemporaryGrant struct {
	Name   string `bson:"name" json:"name"`
	Expiry int64  `bson:"expiry" json:"expiry"`
}

// ActiveAt reports whether the grant is still active at the given epoch
// second. A grant is inactive from its expiry instant onwards.
func (t TemporaryGrant) ActiveAt(at int64) bool {
	return t.Expiry > at
}

type User struct {
	Id              uuid.UUID        `bson:"_id" json:"id"`
	Username        string           `bson:"username" json:"username"`
	Groups          []string         `bson:"groups" json:"groups"`
	TempGroups      []TemporaryGrant `bson:"tempGroups" json:"tempGroups"`
	Permissions     []string         `bson:"permissions" json:"permissions"`
	TempPermissions []TemporaryGrant `bson:"tempPermissions" json:"tempPermissions"`
	LastUpdated     int64            `bson:"lastUpdated" json:"lastUpdated"`
}

func NewUser(id uuid.UUID, username string, at int64) *User {
	return &User{
		Id:              id,
		Username:        username,
		Groups:          []string{BaseGroupName},
		TempGroups:      make([]TemporaryGrant, 0),
		Permissions:     make([]string, 0),
		TempPermissions: make([]TemporaryGrant, 0),
		LastUpdated:     at,
	}
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Groups = append([]string(nil), u.Groups...)
	clone.TempGroups = append([]TemporaryGrant(nil), u.TempGroups...)
	clone.Permissions = append([]string(nil), u.Permissions...)
	clone.TempPermissions = append([]TemporaryGrant(nil), u.TempPermissions...)
	return &clone
}

// EnsureBaseGroup inserts the base group membership if missing, covering
// records written before the invariant existed. Returns true if the user
// was modified.
func (u *User) EnsureBaseGroup() bool {
	if contains(u.Groups, BaseGroupName) {
		return false
	}
	u.Groups = append(u.Groups, BaseGroupName)
	return true
}

// ActiveGroups returns the user's permanent groups plus temporary groups
// that have not expired at the given epoch second.
func (u *User) ActiveGroups(at int64) []string {
	groups := append([]string(nil), u.Groups...)
	for _, t := range u.TempGroups {
		if t.ActiveAt(at) {
			groups = append(groups, t.Name)
		}
	}
	return groups
}

// ActivePermissions returns the user's permanent individual permissions
// plus temporary ones that have not expired at the given epoch second.
func (u *User) ActivePermissions(at int64) []string {
	perms := append([]string(nil), u.Permissions...)
	for _, t := range u.TempPermissions {
		if t.ActiveAt(at) {
			perms = append(perms, t.Name)
		}
	}
	return perms
}

func (u *User) HasGroup(name string) bool {
	return contains(u.Groups, name)
}

func (u *User) HasTemporaryGroup(name string) bool {
	return containsGrant(u.TempGroups, name)
}

// AddGroup adds a permanent membership. Any temporary membership for the
// same group is dropped; a name is never in both sets. Returns false if
// the permanent membership already existed.
func (u *User) AddGroup(name string) bool {
	u.TempGroups = removeGrant(u.TempGroups, name)
	if contains(u.Groups, name) {
		return false
	}
	u.Groups = append(u.Groups, name)
	return true
}

// AddTemporaryGroup adds or replaces a temporary membership, dropping any
// permanent membership for the same group.
func (u *User) AddTemporaryGroup(name string, expiry int64) {
	u.Groups = remove(u.Groups, name)
	u.TempGroups = removeGrant(u.TempGroups, name)
	u.TempGroups = append(u.TempGroups, TemporaryGrant{Name: name, Expiry: expiry})
}

// RemoveGroup removes name from both the permanent and temporary
// membership sets. Returns false if the user was not a member at all.
func (u *User) RemoveGroup(name string) bool {
	had := contains(u.Groups, name) || containsGrant(u.TempGroups, name)
	u.Groups = remove(u.Groups, name)
	u.TempGroups = removeGrant(u.TempGroups, name)
	return had
}

func (u *User) HasPermission(node string) bool {
	return contains(u.Permissions, node)
}

// AddPermission mirrors AddGroup for individual permission grants.
func (u *User) AddPermission(node string) bool {
	u.TempPermissions = removeGrant(u.TempPermissions, node)
	if contains(u.Permissions, node) {
		return false
	}
	u.Permissions = append(u.Permissions, node)
	return true
}

// AddTemporaryPermission mirrors AddTemporaryGroup for individual grants.
func (u *User) AddTemporaryPermission(node string, expiry int64) {
	u.Permissions = remove(u.Permissions, node)
	u.TempPermissions = removeGrant(u.TempPermissions, node)
	u.TempPermissions = append(u.TempPermissions, TemporaryGrant{Name: node, Expiry: expiry})
}

// RemovePermission removes node from both permission sets. Returns false
// if the user did not hold it.
func (u *User) RemovePermission(node string) bool {
	had := contains(u.Permissions, node) || containsGrant(u.TempPermissions, node)
	u.Permissions = remove(u.Permissions, node)
	u.TempPermissions = removeGrant(u.TempPermissions, node)
	return had
}

// RemoveExpired drops every temporary group and permission whose expiry
// has passed and returns how many entries were removed.
func (u *User) RemoveExpired(at int64) int {
	removed := 0
	u.TempGroups, removed = filterActive(u.TempGroups, at, removed)
	u.TempPermissions, removed = filterActive(u.TempPermissions, at, removed)
	return removed
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func contains(values []string, v string) bool {
	for _, e := range values {
		if e == v {
			return true
		}
	}
	return false
}

func remove(values []string, v string) []string {
	for i, e := range values {
		if e == v {
			return append(values[:i], values[i+1:]...)
		}
	}
	return values
}

func containsGrant(grants []TemporaryGrant, name string) bool {
	for _, g := range grants {
		if g.Name == name {
			return true
		}
	}
	return false
}

func removeGrant(grants []TemporaryGrant, name string) []TemporaryGrant {
	for i, g := range grants {
		if g.Name == name {
			return append(grants[:i], grants[i+1:]...)
		}
	}
	return grants
}

func filterActive(grants []TemporaryGrant, at int64, removed int) ([]TemporaryGrant, int) {
	kept := grants[:0]
	for _, g := range grants {
		if g.ActiveAt(at) {
			kept = append(kept, g)
		} else {
			removed++
		}
	}
	return kept, removed
}
