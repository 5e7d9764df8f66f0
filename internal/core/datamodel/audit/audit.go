package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Log struct {
	ID        string         `gorm:"primaryKey"`
	Type      string         `gorm:"column:type;not null;index"`
	UserID    *string        `gorm:"column:user_id;index"`
	IP        *string        `gorm:"column:ip"`
	UserAgent *string        `gorm:"column:user_agent"`
	Success   bool           `gorm:"column:success;not null"`
	Error     *string        `gorm:"column:error"`
	Metadata  datatypes.JSON `gorm:"column:metadata"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (Log) TableName() string { return "audit_logs" }

func (l *Log) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
