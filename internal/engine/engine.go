// Package engine wires the stores, services and resolver into a single
// explicitly-constructed owner with an initialize/reload/shutdown
// lifecycle. The host integration layer consumes it directly.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"permission-engine/internal/messaging/notifier"
	"permission-engine/internal/nodes"
	"permission-engine/internal/repository"
	"permission-engine/internal/repository/model"
	"permission-engine/internal/resolver"
	"permission-engine/internal/service"
	"permission-engine/internal/store"
)

type Options struct {
	CacheTTL           time.Duration
	DefaultGroupWeight int32
}

type Engine struct {
	logger *zap.SugaredLogger
	repo   repository.Repository

	groups   *store.GroupStore
	users    *store.UserStore
	registry *nodes.Registry

	resolver     *resolver.Resolver
	groupService *service.GroupService
	userService  *service.UserService
}

func New(logger *zap.SugaredLogger, repo repository.Repository, notif notifier.Notifier, opts Options) *Engine {
	groups := store.NewGroupStore()
	users := store.NewUserStore()
	registry := nodes.NewRegistry()
	res := resolver.New(logger, groups, users, registry, opts.CacheTTL)

	return &Engine{
		logger:       logger,
		repo:         repo,
		groups:       groups,
		users:        users,
		registry:     registry,
		resolver:     res,
		groupService: service.NewGroupService(logger, repo, groups, users, notif, res, opts.DefaultGroupWeight),
		userService:  service.NewUserService(logger, repo, groups, users, notif, res),
	}
}

// Initialize loads both stores from the repository. The base group is
// created and persisted on first initialization. Must complete before any
// resolver query; the stores panic otherwise.
func (e *Engine) Initialize(ctx context.Context) error {
	groups, err := e.repo.GetAllGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}

	hasBase := false
	for _, g := range groups {
		if g.Name == model.BaseGroupName {
			hasBase = true
			break
		}
	}
	if !hasBase {
		base := model.NewBaseGroup()
		if err := e.repo.SaveGroup(ctx, base); err != nil {
			return fmt.Errorf("failed to create base group: %w", err)
		}
		groups = append(groups, base)
	}

	users, err := e.repo.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		u.EnsureBaseGroup()
	}

	e.groups.Load(groups)
	e.users.Load(users)

	groupCount, err := e.repo.GroupCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count groups: %w", err)
	}
	userCount, err := e.repo.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	e.logger.Infow("stores initialized", "groups", groupCount, "users", userCount)
	return nil
}

// Reload discards and rebuilds both stores from the repository and clears
// all resolver caches.
func (e *Engine) Reload(ctx context.Context) error {
	if err := e.Initialize(ctx); err != nil {
		return err
	}
	e.resolver.InvalidateAll()
	e.logger.Info("stores reloaded")
	return nil
}

// Shutdown drops the resolver caches. The repository and notifier have
// their own lifecycle, owned by the app.
func (e *Engine) Shutdown() {
	e.resolver.InvalidateAll()
	e.logger.Info("engine shut down")
}

// HandleUserQuit drops the cached state for a user that logged off.
func (e *Engine) HandleUserQuit(id uuid.UUID) {
	e.resolver.InvalidateUser(id)
}

func (e *Engine) Resolver() *resolver.Resolver        { return e.resolver }
func (e *Engine) GroupService() *service.GroupService { return e.groupService }
func (e *Engine) UserService() *service.UserService   { return e.userService }
func (e *Engine) NodeRegistry() *nodes.Registry       { return e.registry }
