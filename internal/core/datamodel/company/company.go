package company

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Company struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"column:user_id;uniqueIndex;not null"`
	CNPJ      string    `gorm:"column:cnpj;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	Category  string    `gorm:"column:category;not null;index"`
	Status    string    `gorm:"column:status;not null;default:ACTIVE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Company) TableName() string { return "companies" }

func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
