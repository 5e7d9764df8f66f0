package iam

import (
	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/core/common/validation"
)

type AssignRoleDTO struct {
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
}

func (d *AssignRoleDTO) Validate() *internal.AppError {
	validator := validation.NewValidator()
	validator.Field("userId", d.UserID).Required()
	validator.Field("roleId", d.RoleID).Required()
	return validator.Validate()
}

type CheckPermissionDTO struct {
	Resource  string `json:"resource"`
	Action    string `json:"action"`
	CompanyID string `json:"companyId,omitempty"`
}

func (d *CheckPermissionDTO) Validate() *internal.AppError {
	validator := validation.NewValidator()
	validator.Field("resource", d.Resource).Required()
	validator.Field("action", d.Action).Required()
	return validator.Validate()
}

type AssignRoleResponse struct {
	Message  string      `json:"message"`
	UserRole *Assignment `json:"userRole"`
}

type MessageResponse struct {
	Message string `json:"message"`
	OK      bool   `json:"ok"`
}

type CheckPermissionResponse struct {
	Allowed bool `json:"allowed"`
}

type PermissionsResponse struct {
	Permissions []string `json:"permissions"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

type PermissionCatalogResponse struct {
	Permissions []*Permission `json:"permissions"`
}
