package notifier

import (
	"context"

	"github.com/google/uuid"
)

type ChangeType string

const (
	ChangeTypeCreate ChangeType = "CREATE"
	ChangeTypeModify ChangeType = "MODIFY"
	ChangeTypeDelete ChangeType = "DELETE"
)

// GroupUpdateMessage announces that a group was created, edited or deleted.
// Consumers (host integrations) use it to refresh materialized grants.
type GroupUpdateMessage struct {
	GroupName  string     `json:"groupName"`
	ChangeType ChangeType `json:"changeType"`
}

// UserUpdateMessage announces that a single user's memberships or
// individual grants changed.
type UserUpdateMessage struct {
	UserId     string     `json:"userId"`
	ChangeType ChangeType `json:"changeType"`
}

type Notifier interface {
	GroupUpdate(ctx context.Context, groupName string, changeType ChangeType) error
	UserUpdate(ctx context.Context, userId uuid.UUID, changeType ChangeType) error
}
