package audit

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/audit"
	"github.com/frahmantamala/reputation-management/internal/core/events"
)

// Store persists audit events into audit_logs.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, event *events.AuditEvent) error {
	row := &auditDatamodel.Log{
		Type:      event.Action,
		UserID:    optional(event.UserID),
		IP:        optional(event.IP),
		UserAgent: optional(event.UserAgent),
		Success:   event.Success,
		Error:     optional(event.Error),
		CreatedAt: event.OccurredAt(),
	}

	if len(event.Metadata) > 0 {
		encoded, err := json.Marshal(event.Metadata)
		if err != nil {
			return err
		}
		row.Metadata = datatypes.JSON(encoded)
	}

	return s.db.WithContext(ctx).Create(row).Error
}

func (s *Store) Handle(ctx context.Context, event events.Event) error {
	auditEvent, err := asAuditEvent(event)
	if err != nil {
		return err
	}
	return s.Save(ctx, auditEvent)
}

// FindByUserID returns the user's audit trail, newest first.
func (s *Store) FindByUserID(ctx context.Context, userID string, limit int) ([]auditDatamodel.Log, error) {
	var rows []auditDatamodel.Log
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
