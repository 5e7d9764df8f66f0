package user

import (
	"context"

	"github.com/frahmantamala/reputation-management/internal/auth"
)

// Profile is the caller's public user record plus its effective permissions.
type Profile struct {
	*auth.PublicUser
	Permissions []string `json:"permissions"`
}

type Repository interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
}

type PermissionLister interface {
	GetUserPermissions(ctx context.Context, userID string) ([]string, error)
}

type ServiceAPI interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}
