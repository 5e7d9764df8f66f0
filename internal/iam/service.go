package iam

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/reputation-management/internal"
)

type Service struct {
	store   Store
	checker CheckerAPI
	logger  *slog.Logger
}

func NewService(store Store, checker CheckerAPI, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		checker: checker,
		logger:  logger,
	}
}

var _ ServiceAPI = (*Service)(nil)

func (s *Service) AssignRole(ctx context.Context, userID, roleID string) (*Assignment, error) {
	role, err := s.resolve(ctx, userID, roleID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindAssignment(ctx, userID, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role assignment", err)
	}
	if existing != nil {
		return nil, internal.ErrRoleAlreadyAssigned
	}

	assignment, err := s.store.Assign(ctx, userID, role)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to assign role", "user_id", userID, "role_id", roleID, "error", err)
		return nil, internal.NewInternalError("failed to assign role", err)
	}

	s.logger.Info("role assigned", "user_id", userID, "role", role.Name)
	return assignment, nil
}

func (s *Service) RemoveRole(ctx context.Context, userID, roleID string) error {
	role, err := s.resolve(ctx, userID, roleID)
	if err != nil {
		return err
	}

	existing, err := s.store.FindAssignment(ctx, userID, roleID)
	if err != nil {
		return internal.NewInternalError("failed to load role assignment", err)
	}
	if existing == nil {
		return internal.ErrRoleNotAssigned
	}

	if err := s.store.Unassign(ctx, userID, role); err != nil {
		s.logger.Error("failed to remove role", "user_id", userID, "role_id", roleID, "error", err)
		return internal.NewInternalError("failed to remove role", err)
	}

	s.logger.Info("role removed", "user_id", userID, "role", role.Name)
	return nil
}

func (s *Service) CheckPermission(ctx context.Context, in CheckInput) (bool, error) {
	return s.checker.Check(ctx, in)
}

func (s *Service) ListUserPermissions(ctx context.Context, userID string) ([]string, error) {
	subject, err := s.store.FindSubject(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if subject == nil {
		return nil, internal.ErrUserNotFound
	}
	return s.checker.GetUserPermissions(ctx, userID)
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}
	if roles == nil {
		roles = []*Role{}
	}
	return roles, nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]*Permission, error) {
	permissions, err := s.store.ListPermissions(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	if permissions == nil {
		permissions = []*Permission{}
	}
	return permissions, nil
}

func (s *Service) resolve(ctx context.Context, userID, roleID string) (*Role, error) {
	subject, err := s.store.FindSubject(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if subject == nil {
		return nil, internal.ErrUserNotFound
	}

	role, err := s.store.FindRoleByID(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}
	return role, nil
}
