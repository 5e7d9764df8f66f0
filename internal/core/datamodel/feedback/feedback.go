package feedback

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Consumer struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"column:user_id;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Consumer) TableName() string { return "consumers" }

func (c *Consumer) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Feedback struct {
	ID         string    `gorm:"primaryKey"`
	ConsumerID string    `gorm:"column:consumer_id;not null;index"`
	CompanyID  string    `gorm:"column:company_id;not null;index"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    *string   `gorm:"column:comment"`
	Status     string    `gorm:"column:status;not null;default:ACTIVE"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Feedback) TableName() string { return "feedbacks" }

func (f *Feedback) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
