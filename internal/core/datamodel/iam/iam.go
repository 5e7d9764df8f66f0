package iam

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          string    `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string { return "roles" }

func (r *Role) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type Permission struct {
	ID          string    `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Resource    string    `gorm:"column:resource;not null;uniqueIndex:idx_permissions_resource_action"`
	Action      string    `gorm:"column:action;not null;uniqueIndex:idx_permissions_resource_action"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Permission) TableName() string { return "permissions" }

func (p *Permission) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type RolePermission struct {
	ID           string    `gorm:"primaryKey"`
	RoleID       string    `gorm:"column:role_id;not null;uniqueIndex:idx_role_permissions_pair"`
	PermissionID string    `gorm:"column:permission_id;not null;uniqueIndex:idx_role_permissions_pair"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RolePermission) TableName() string { return "role_permissions" }

func (rp *RolePermission) BeforeCreate(*gorm.DB) error {
	if rp.ID == "" {
		rp.ID = uuid.NewString()
	}
	return nil
}

type UserRole struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"column:user_id;not null;uniqueIndex:idx_user_roles_pair"`
	RoleID    string    `gorm:"column:role_id;not null;uniqueIndex:idx_user_roles_pair"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserRole) TableName() string { return "user_roles" }

func (ur *UserRole) BeforeCreate(*gorm.DB) error {
	if ur.ID == "" {
		ur.ID = uuid.NewString()
	}
	return nil
}
