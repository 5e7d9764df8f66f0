package iam

import (
	"context"
	"log/slog"
	"sort"

	"github.com/frahmantamala/reputation-management/internal"
)

// Checker resolves permissions through role assignments and role grants.
// Nothing is cached: every call reads the stores again.
type Checker struct {
	store  Store
	logger *slog.Logger
}

func NewChecker(store Store, logger *slog.Logger) *Checker {
	return &Checker{
		store:  store,
		logger: logger,
	}
}

var _ CheckerAPI = (*Checker)(nil)

// Check grants when any assigned role grants (Resource, Action). With a
// CompanyID the user must also own that company. SUPER_ADMIN bypasses all of it.
func (c *Checker) Check(ctx context.Context, in CheckInput) (bool, error) {
	subject, err := c.store.FindSubject(ctx, in.UserID)
	if err != nil {
		return false, internal.NewInternalError("failed to load user", err)
	}
	if subject == nil || !subject.IsActive() {
		return false, nil
	}
	if subject.IsSuperAdmin() {
		return true, nil
	}

	assignments, err := c.store.FindAssignmentsByUserID(ctx, in.UserID)
	if err != nil {
		return false, internal.NewInternalError("failed to load role assignments", err)
	}
	if len(assignments) == 0 {
		return false, nil
	}

	permission, err := c.store.FindPermission(ctx, in.Resource, in.Action)
	if err != nil {
		return false, internal.NewInternalError("failed to load permission", err)
	}
	if permission == nil {
		return false, nil
	}

	for _, assignment := range assignments {
		granted, err := c.store.PermissionIDsByRoleID(ctx, assignment.RoleID)
		if err != nil {
			return false, internal.NewInternalError("failed to load role permissions", err)
		}
		if !containsID(granted, permission.ID) {
			continue
		}

		if in.CompanyID == "" {
			return true, nil
		}

		owned, err := c.store.CompanyIDByUserID(ctx, in.UserID)
		if err != nil {
			return false, internal.NewInternalError("failed to load user company", err)
		}
		if owned != "" && owned == in.CompanyID {
			return true, nil
		}
		c.logger.Debug("scoped permission denied",
			"user_id", in.UserID,
			"company_id", in.CompanyID,
			"permission", permission.Key())
		return false, nil
	}

	return false, nil
}

// Allowed adapts Check to the HTTP permission middleware.
func (c *Checker) Allowed(ctx context.Context, userID, resource, action, companyID string) (bool, error) {
	return c.Check(ctx, CheckInput{
		UserID:    userID,
		Resource:  resource,
		Action:    action,
		CompanyID: companyID,
	})
}

// GetUserPermissions lists "resource:action" strings sorted by permission name.
func (c *Checker) GetUserPermissions(ctx context.Context, userID string) ([]string, error) {
	subject, err := c.store.FindSubject(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if subject == nil || !subject.IsActive() {
		return []string{}, nil
	}

	var permissions []*Permission
	if subject.IsSuperAdmin() {
		permissions, err = c.store.ListPermissions(ctx)
		if err != nil {
			return nil, internal.NewInternalError("failed to list permissions", err)
		}
	} else {
		assignments, err := c.store.FindAssignmentsByUserID(ctx, userID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load role assignments", err)
		}
		if len(assignments) == 0 {
			return []string{}, nil
		}

		roleIDs := make([]string, 0, len(assignments))
		for _, a := range assignments {
			roleIDs = append(roleIDs, a.RoleID)
		}
		permissions, err = c.store.PermissionsByRoleIDs(ctx, roleIDs)
		if err != nil {
			return nil, internal.NewInternalError("failed to load role permissions", err)
		}
	}

	return formatPermissions(permissions), nil
}

func formatPermissions(permissions []*Permission) []string {
	seen := make(map[string]struct{}, len(permissions))
	unique := make([]*Permission, 0, len(permissions))
	for _, p := range permissions {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		unique = append(unique, p)
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Name < unique[j].Name
	})

	keys := make([]string, 0, len(unique))
	for _, p := range unique {
		keys = append(keys, p.Key())
	}
	return keys
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
