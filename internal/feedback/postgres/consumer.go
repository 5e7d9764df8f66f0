package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/core/common/dberr"
	feedbackDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/feedback"
	"github.com/frahmantamala/reputation-management/internal/feedback"
)

type ConsumerRepository struct {
	db *gorm.DB
}

func NewConsumerRepository(db *gorm.DB) *ConsumerRepository {
	return &ConsumerRepository{db: db}
}

var _ feedback.ConsumerRepositoryAPI = (*ConsumerRepository)(nil)

func (r *ConsumerRepository) FindByID(ctx context.Context, id string) (*feedback.Consumer, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *ConsumerRepository) FindByUserID(ctx context.Context, userID string) (*feedback.Consumer, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *ConsumerRepository) findOne(ctx context.Context, query string, arg interface{}) (*feedback.Consumer, error) {
	var row feedbackDatamodel.Consumer
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toConsumer(&row), nil
}

func (r *ConsumerRepository) Create(ctx context.Context, c *feedback.Consumer) error {
	row := &feedbackDatamodel.Consumer{UserID: c.UserID}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return internal.ErrConsumerAlreadyExists
		}
		return err
	}
	*c = *toConsumer(row)
	return nil
}

func toConsumer(row *feedbackDatamodel.Consumer) *feedback.Consumer {
	return &feedback.Consumer{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
