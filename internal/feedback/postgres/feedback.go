package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/core/common/dberr"
	feedbackDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/feedback"
	"github.com/frahmantamala/reputation-management/internal/feedback"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

var _ feedback.RepositoryAPI = (*FeedbackRepository)(nil)

func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*feedback.Feedback, error) {
	var row feedbackDatamodel.Feedback
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return feedback.FromDataModel(&row), nil
}

func (r *FeedbackRepository) FindAll(ctx context.Context, filter feedback.ListFilter) ([]*feedback.Feedback, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&feedbackDatamodel.Feedback{}).
		Where("feedbacks.status = ?", string(feedback.StatusActive))

	if filter.CompanyID != "" {
		query = query.Where("feedbacks.company_id = ?", filter.CompanyID)
	}
	if filter.ConsumerID != "" {
		query = query.Where("feedbacks.consumer_id = ?", filter.ConsumerID)
	}
	if filter.Category != "" {
		query = query.
			Joins("JOIN companies ON companies.id = feedbacks.company_id").
			Where("companies.category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(feedbacks.comment) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []feedbackDatamodel.Feedback
	err := query.
		Select("feedbacks.*").
		Order("feedbacks.created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]*feedback.Feedback, 0, len(rows))
	for i := range rows {
		items = append(items, feedback.FromDataModel(&rows[i]))
	}
	return items, total, nil
}

func (r *FeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	row := f.ToDataModel()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*f = *feedback.FromDataModel(row)
	return nil
}

func (r *FeedbackRepository) Update(ctx context.Context, f *feedback.Feedback) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&feedbackDatamodel.Feedback{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"rating":     int(f.Rating),
			"comment":    f.Comment,
			"status":     string(f.Status),
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrFeedbackNotFound
	}
	f.UpdatedAt = now
	return nil
}
