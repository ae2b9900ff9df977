// Package resolver computes effective permission sets and single-permission
// verdicts. It reads snapshots from the in-memory stores and never mutates
// them; its only writable state is a pair of TTL caches it may discard at
// any time without correctness impact.
package resolver

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"permission-engine/internal/cache"
	"permission-engine/internal/nodes"
	"permission-engine/internal/repository/model"
	"permission-engine/internal/store"
)

type verdictKey struct {
	userId uuid.UUID
	node   string
}

// effectiveSet is a snapshot of everything resolution needs for one user:
// the raw merged grant strings, their parsed forms, and the active groups
// ordered by weight descending (name ascending on ties).
type effectiveSet struct {
	entries map[string]struct{}
	parsed  []nodes.Node
	groups  []string
}

type Resolver struct {
	logger   *zap.SugaredLogger
	groups   *store.GroupStore
	users    *store.UserStore
	registry *nodes.Registry

	verdicts *cache.TTL[verdictKey, bool]
	sets     *cache.TTL[uuid.UUID, *effectiveSet]

	nowFn func() time.Time
}

func New(logger *zap.SugaredLogger, groups *store.GroupStore, users *store.UserStore,
	registry *nodes.Registry, ttl time.Duration) *Resolver {

	return &Resolver{
		logger:   logger,
		groups:   groups,
		users:    users,
		registry: registry,
		verdicts: cache.NewTTL[verdictKey, bool](ttl),
		sets:     cache.NewTTL[uuid.UUID, *effectiveSet](ttl),
		nowFn:    time.Now,
	}
}

// SetNowFunc overrides the resolver's clock, including the cache clocks.
// Test hook.
func (r *Resolver) SetNowFunc(nowFn func() time.Time) {
	r.nowFn = nowFn
	r.verdicts.SetNowFunc(nowFn)
	r.sets.SetNowFunc(nowFn)
}

// HasPermission answers whether the user holds perm. A malformed or
// negated query is false, never an error; an unknown user resolves with
// base-only grants.
func (r *Resolver) HasPermission(userId uuid.UUID, perm string) bool {
	parsed, err := nodes.Parse(perm)
	if err != nil || parsed.Negated() {
		return false
	}

	key := verdictKey{userId: userId, node: perm}
	return r.verdicts.GetOrCompute(key, func() bool {
		return r.effective(userId).verdict(perm)
	})
}

// EffectivePermissions returns the user's raw merged grant strings
// (wildcards and negations unexpanded), sorted ascending.
func (r *Resolver) EffectivePermissions(userId uuid.UUID) []string {
	set := r.effective(userId)
	perms := make([]string, 0, len(set.entries))
	for p := range set.entries {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// EffectiveGroups returns the user's active groups ordered by weight
// descending, name ascending on ties. Always contains the base group.
func (r *Resolver) EffectiveGroups(userId uuid.UUID) []string {
	return append([]string(nil), r.effective(userId).groups...)
}

// PrimaryGroup is the highest-weight active group, the source of the
// user's prefix and suffix. Empty only if the base group itself is gone
// from the store.
func (r *Resolver) PrimaryGroup(userId uuid.UUID) string {
	groups := r.effective(userId).groups
	if len(groups) == 0 {
		return ""
	}
	return groups[0]
}

// Prefix returns the primary group's prefix, or nil if the group has none.
// Prefixes are never merged across groups.
func (r *Resolver) Prefix(userId uuid.UUID) *string {
	if g, ok := r.primaryGroupRecord(userId); ok {
		return g.Prefix
	}
	return nil
}

// Suffix returns the primary group's suffix, or nil if the group has none.
func (r *Resolver) Suffix(userId uuid.UUID) *string {
	if g, ok := r.primaryGroupRecord(userId); ok {
		return g.Suffix
	}
	return nil
}

// ExpandedPermissions expands the user's wildcard grants against the
// discovered-node registry. Display convenience only; verdicts never use
// the expansion.
func (r *Resolver) ExpandedPermissions(userId uuid.UUID) []string {
	set := r.effective(userId)

	granted := make(map[string]struct{})
	for _, n := range set.parsed {
		if !n.Negated() && n.Kind() == nodes.Exact && set.verdict(n.Prefix()) {
			granted[n.Prefix()] = struct{}{}
		}
	}
	for _, known := range r.registry.Nodes() {
		if set.verdict(known) {
			granted[known] = struct{}{}
		}
	}

	perms := make([]string, 0, len(granted))
	for p := range granted {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// InvalidateUser discards every cached entry for one user. Called by the
// services on any user-scoped mutation and on logoff.
func (r *Resolver) InvalidateUser(userId uuid.UUID) {
	r.sets.Delete(userId)
	r.verdicts.DeleteFunc(func(k verdictKey) bool { return k.userId == userId })
}

// InvalidateAll discards both caches. Called on any group-level mutation,
// whose blast radius is unbounded until membership is known.
func (r *Resolver) InvalidateAll() {
	r.sets.Clear()
	r.verdicts.Clear()
}

func (r *Resolver) effective(userId uuid.UUID) *effectiveSet {
	return r.sets.GetOrCompute(userId, func() *effectiveSet {
		return r.compute(userId)
	})
}

func (r *Resolver) compute(userId uuid.UUID) *effectiveSet {
	at := r.nowFn().Unix()

	var activeGroups, userPerms []string
	if user, ok := r.users.Get(userId); ok {
		activeGroups = user.ActiveGroups(at)
		userPerms = user.ActivePermissions(at)
	} else {
		// Unknown users resolve with base-only grants.
		activeGroups = []string{model.BaseGroupName}
	}

	// Dangling memberships (group deleted out from under the user) are
	// skipped; they contribute nothing.
	groups := make([]*model.Group, 0, len(activeGroups))
	for _, name := range activeGroups {
		if g, ok := r.groups.Get(name); ok {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Weight != groups[j].Weight {
			return groups[i].Weight > groups[j].Weight
		}
		return groups[i].Name < groups[j].Name
	})

	set := &effectiveSet{
		entries: make(map[string]struct{}),
		groups:  make([]string, 0, len(groups)),
	}
	for _, g := range groups {
		set.groups = append(set.groups, g.Name)
		for _, p := range g.Permissions {
			set.entries[p] = struct{}{}
		}
	}
	// Individual grants overlay group grants.
	for _, p := range userPerms {
		set.entries[p] = struct{}{}
	}

	set.parsed = make([]nodes.Node, 0, len(set.entries))
	for raw := range set.entries {
		n, err := nodes.Parse(raw)
		if err != nil {
			// Stored nodes are validated at write time; anything else is
			// hand-edited storage. Skip rather than fail the resolution.
			r.logger.Warnw("skipping malformed stored permission node", "node", raw, "user", userId)
			continue
		}
		set.parsed = append(set.parsed, n)
	}
	return set
}

func (r *Resolver) primaryGroupRecord(userId uuid.UUID) (*model.Group, bool) {
	name := r.PrimaryGroup(userId)
	if name == "" {
		return nil, false
	}
	return r.groups.Get(name)
}

// verdict implements the precedence chain: exact negation > exact grant >
// wildcard grant > default deny. A wildcard grant is blocked only by a
// negation of equal-or-narrower scope that also matches the queried node.
func (s *effectiveSet) verdict(perm string) bool {
	if _, ok := s.entries["-"+perm]; ok {
		return false
	}
	if _, ok := s.entries[perm]; ok {
		return true
	}
	if _, ok := s.entries["*"]; ok {
		if _, negated := s.entries["-*"]; !negated {
			return true
		}
	}

	for _, n := range s.parsed {
		if n.Negated() || n.Kind() != nodes.Wildcard || n.Global() {
			continue
		}
		if !n.Matches(perm) {
			continue
		}
		if !s.blocked(perm, n.Scope()) {
			return true
		}
	}
	return false
}

// blocked reports whether a negation matching perm exists at scope equal
// to or narrower than the granting wildcard's scope.
func (s *effectiveSet) blocked(perm string, grantScope int) bool {
	for _, n := range s.parsed {
		if !n.Negated() {
			continue
		}
		if n.Kind() == nodes.Exact {
			if n.Prefix() == perm {
				return true
			}
			continue
		}
		if strings.HasPrefix(perm, n.Prefix()) && n.Scope() >= grantScope {
			return true
		}
	}
	return false
}
