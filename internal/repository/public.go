package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"permission-engine/internal/repository/model"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")
)

// Repository is the persistence boundary. Records are loaded in bulk at
// startup and written through on every mutation; the resolver never touches
// it.
type Repository interface {
	GetAllGroups(ctx context.Context) ([]*model.Group, error)
	GetGroup(ctx context.Context, name string) (*model.Group, error)
	SaveGroup(ctx context.Context, group *model.Group) error
	DeleteGroup(ctx context.Context, name string) error
	DoesGroupExist(ctx context.Context, name string) (bool, error)
	GroupCount(ctx context.Context) (int64, error)

	GetAllUsers(ctx context.Context) ([]*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	DoesUserExist(ctx context.Context, id uuid.UUID) (bool, error)
	UserCount(ctx context.Context) (int64, error)
}
