package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/core/common/dberr"
	reputationDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/reputation"
	"github.com/frahmantamala/reputation-management/internal/reputation"
)

type ReputationRepository struct {
	db *gorm.DB
}

func NewReputationRepository(db *gorm.DB) *ReputationRepository {
	return &ReputationRepository{db: db}
}

var _ reputation.RepositoryAPI = (*ReputationRepository)(nil)

func (r *ReputationRepository) FindMetricsByCompanyID(ctx context.Context, companyID string) (*reputation.Metrics, error) {
	var row reputationDatamodel.Metrics
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toMetrics(&row), nil
}

func (r *ReputationRepository) CreateMetrics(ctx context.Context, m *reputation.Metrics) error {
	row := toMetricsRow(m)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return reputation.ErrMetricsExists
		}
		return err
	}
	*m = *toMetrics(row)
	return nil
}

func (r *ReputationRepository) UpdateMetrics(ctx context.Context, m *reputation.Metrics) error {
	return updateMetrics(r.db.WithContext(ctx), m)
}

func (r *ReputationRepository) UpdateMetricsWithHistory(ctx context.Context, previous, m *reputation.Metrics) (*reputation.HistoryEntry, error) {
	var entry *reputation.HistoryEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := toHistoryRow(previous)
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if err := updateMetrics(tx, m); err != nil {
			return err
		}
		entry = toHistoryEntry(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func updateMetrics(db *gorm.DB, m *reputation.Metrics) error {
	now := time.Now().UTC()
	result := db.
		Model(&reputationDatamodel.Metrics{}).
		Where("company_id = ?", m.CompanyID).
		Updates(map[string]interface{}{
			"average_rating":  m.AverageRating,
			"total_feedbacks": m.TotalFeedbacks,
			"rating1":         m.Distribution.Rating1,
			"rating2":         m.Distribution.Rating2,
			"rating3":         m.Distribution.Rating3,
			"rating4":         m.Distribution.Rating4,
			"rating5":         m.Distribution.Rating5,
			"updated_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrReputationNotFound
	}
	m.UpdatedAt = now
	return nil
}

func (r *ReputationRepository) FindHistoryByCompanyID(ctx context.Context, companyID string, limit int) ([]*reputation.HistoryEntry, error) {
	var rows []reputationDatamodel.History
	err := r.db.WithContext(ctx).
		Model(&reputationDatamodel.History{}).
		Select("reputation_history.*").
		Joins("JOIN reputation_metrics ON reputation_metrics.id = reputation_history.reputation_metrics_id").
		Where("reputation_metrics.company_id = ?", companyID).
		Order("reputation_history.recorded_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*reputation.HistoryEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, toHistoryEntry(&rows[i]))
	}
	return entries, nil
}

func (r *ReputationRepository) FindMetricsOrderedByRating(ctx context.Context, limit int) ([]*reputation.Metrics, error) {
	var rows []reputationDatamodel.Metrics
	err := r.db.WithContext(ctx).
		Order("average_rating DESC").
		Order("total_feedbacks DESC").
		Order("company_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	metrics := make([]*reputation.Metrics, 0, len(rows))
	for i := range rows {
		metrics = append(metrics, toMetrics(&rows[i]))
	}
	return metrics, nil
}

func toMetricsRow(m *reputation.Metrics) *reputationDatamodel.Metrics {
	return &reputationDatamodel.Metrics{
		ID:             m.ID,
		CompanyID:      m.CompanyID,
		AverageRating:  m.AverageRating,
		TotalFeedbacks: m.TotalFeedbacks,
		Rating1:        m.Distribution.Rating1,
		Rating2:        m.Distribution.Rating2,
		Rating3:        m.Distribution.Rating3,
		Rating4:        m.Distribution.Rating4,
		Rating5:        m.Distribution.Rating5,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toHistoryRow(m *reputation.Metrics) *reputationDatamodel.History {
	return &reputationDatamodel.History{
		ReputationMetricsID: m.ID,
		AverageRating:       m.AverageRating,
		TotalFeedbacks:      m.TotalFeedbacks,
		Rating1:             m.Distribution.Rating1,
		Rating2:             m.Distribution.Rating2,
		Rating3:             m.Distribution.Rating3,
		Rating4:             m.Distribution.Rating4,
		Rating5:             m.Distribution.Rating5,
		RecordedAt:          time.Now().UTC(),
	}
}

func toMetrics(row *reputationDatamodel.Metrics) *reputation.Metrics {
	return &reputation.Metrics{
		ID:             row.ID,
		CompanyID:      row.CompanyID,
		AverageRating:  row.AverageRating,
		TotalFeedbacks: row.TotalFeedbacks,
		Distribution: reputation.Distribution{
			Rating1: row.Rating1,
			Rating2: row.Rating2,
			Rating3: row.Rating3,
			Rating4: row.Rating4,
			Rating5: row.Rating5,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toHistoryEntry(row *reputationDatamodel.History) *reputation.HistoryEntry {
	return &reputation.HistoryEntry{
		ID:             row.ID,
		MetricsID:      row.ReputationMetricsID,
		AverageRating:  row.AverageRating,
		TotalFeedbacks: row.TotalFeedbacks,
		Distribution: reputation.Distribution{
			Rating1: row.Rating1,
			Rating2: row.Rating2,
			Rating3: row.Rating3,
			Rating4: row.Rating4,
			Rating5: row.Rating5,
		},
		RecordedAt: row.RecordedAt,
	}
}
