package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusActive   = "ACTIVE"
	StatusDisabled = "DISABLED"
)

type User struct {
	ID               string         `gorm:"primaryKey"`
	Email            string         `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash     string         `gorm:"column:password_hash;not null"`
	Name             *string        `gorm:"column:name"`
	Roles            datatypes.JSON `gorm:"column:roles"`
	Status           string         `gorm:"column:status;not null;default:ACTIVE"`
	RefreshTokenHash *string        `gorm:"column:refresh_token_hash"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
