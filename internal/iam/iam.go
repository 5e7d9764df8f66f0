package iam

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/reputation-management/internal/auth"
)

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Permission is matched on its (Resource, Action) pair; Name is a label.
type Permission struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Resource    string  `json:"resource"`
	Action      string  `json:"action"`
	Description *string `json:"description,omitempty"`
}

func (p *Permission) Key() string {
	return PermissionKey(p.Resource, p.Action)
}

func (p *Permission) Matches(resource, action string) bool {
	return p.Resource == resource && p.Action == action
}

func PermissionKey(resource, action string) string {
	return fmt.Sprintf("%s:%s", resource, action)
}

type Assignment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RoleID    string    `json:"roleId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Subject is the slice of a user the permission engine needs.
type Subject struct {
	ID     string
	Status auth.UserStatus
	Roles  []string
}

func (s *Subject) IsActive() bool {
	return s.Status == auth.StatusActive
}

func (s *Subject) IsSuperAdmin() bool {
	for _, r := range s.Roles {
		if r == auth.RoleSuperAdmin {
			return true
		}
	}
	return false
}

type CheckInput struct {
	UserID    string `json:"-"`
	Resource  string `json:"resource"`
	Action    string `json:"action"`
	CompanyID string `json:"companyId,omitempty"`
}

type SubjectStore interface {
	FindSubject(ctx context.Context, userID string) (*Subject, error)
	// CompanyIDByUserID returns "" when the user owns no company.
	CompanyIDByUserID(ctx context.Context, userID string) (string, error)
}

type RoleStore interface {
	FindRoleByID(ctx context.Context, id string) (*Role, error)
	ListRoles(ctx context.Context) ([]*Role, error)
}

type PermissionStore interface {
	FindPermission(ctx context.Context, resource, action string) (*Permission, error)
	ListPermissions(ctx context.Context) ([]*Permission, error)
	PermissionIDsByRoleID(ctx context.Context, roleID string) ([]string, error)
	PermissionsByRoleIDs(ctx context.Context, roleIDs []string) ([]*Permission, error)
}

type AssignmentStore interface {
	FindAssignmentsByUserID(ctx context.Context, userID string) ([]*Assignment, error)
	FindAssignment(ctx context.Context, userID, roleID string) (*Assignment, error)
	// Assign and Unassign also keep the user's role tags in step.
	Assign(ctx context.Context, userID string, role *Role) (*Assignment, error)
	Unassign(ctx context.Context, userID string, role *Role) error
}

type Store interface {
	SubjectStore
	RoleStore
	PermissionStore
	AssignmentStore
}

type CheckerAPI interface {
	Check(ctx context.Context, in CheckInput) (bool, error)
	GetUserPermissions(ctx context.Context, userID string) ([]string, error)
}

type ServiceAPI interface {
	AssignRole(ctx context.Context, userID, roleID string) (*Assignment, error)
	RemoveRole(ctx context.Context, userID, roleID string) error
	CheckPermission(ctx context.Context, in CheckInput) (bool, error)
	ListUserPermissions(ctx context.Context, userID string) ([]string, error)
	ListRoles(ctx context.Context) ([]*Role, error)
	ListPermissions(ctx context.Context) ([]*Permission, error)
}
