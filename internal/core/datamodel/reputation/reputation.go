package reputation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Metrics struct {
	ID             string    `gorm:"primaryKey"`
	CompanyID      string    `gorm:"column:company_id;uniqueIndex;not null"`
	AverageRating  float64   `gorm:"column:average_rating;not null;default:0"`
	TotalFeedbacks int       `gorm:"column:total_feedbacks;not null;default:0"`
	Rating1        int       `gorm:"column:rating1;not null;default:0"`
	Rating2        int       `gorm:"column:rating2;not null;default:0"`
	Rating3        int       `gorm:"column:rating3;not null;default:0"`
	Rating4        int       `gorm:"column:rating4;not null;default:0"`
	Rating5        int       `gorm:"column:rating5;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Metrics) TableName() string { return "reputation_metrics" }

func (m *Metrics) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type History struct {
	ID                  string    `gorm:"primaryKey"`
	ReputationMetricsID string    `gorm:"column:reputation_metrics_id;not null;index"`
	AverageRating       float64   `gorm:"column:average_rating;not null"`
	TotalFeedbacks      int       `gorm:"column:total_feedbacks;not null"`
	Rating1             int       `gorm:"column:rating1;not null"`
	Rating2             int       `gorm:"column:rating2;not null"`
	Rating3             int       `gorm:"column:rating3;not null"`
	Rating4             int       `gorm:"column:rating4;not null"`
	Rating5             int       `gorm:"column:rating5;not null"`
	RecordedAt          time.Time `gorm:"column:recorded_at;not null"`
}

func (History) TableName() string { return "reputation_history" }

func (h *History) BeforeCreate(*gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.RecordedAt.IsZero() {
		h.RecordedAt = time.Now().UTC()
	}
	return nil
}
