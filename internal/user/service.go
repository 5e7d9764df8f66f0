package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/reputation-management/internal"
)

type Service struct {
	repo        Repository
	permissions PermissionLister
	logger      *slog.Logger
}

func NewService(repo Repository, permissions PermissionLister, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		permissions: permissions,
		logger:      logger,
	}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user by id", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}

	perms, err := s.permissions.GetUserPermissions(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user permissions", "user_id", userID, "error", err)
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to get user permissions", err)
	}

	return &Profile{
		PublicUser:  u.Public(),
		Permissions: perms,
	}, nil
}
