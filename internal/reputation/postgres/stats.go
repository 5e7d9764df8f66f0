package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/reputation-management/internal/reputation"
)

const (
	activeFeedbackStatus = "ACTIVE"

	ratingCountsQuery = `
		SELECT rating, COUNT(*) AS count
		FROM feedbacks
		WHERE company_id = ? AND status = ?
		GROUP BY rating`

	companiesWithFeedbackQuery = `
		SELECT DISTINCT company_id
		FROM feedbacks
		WHERE status = ?
		ORDER BY company_id`
)

// FeedbackStatsRepository aggregates ratings in SQL instead of loading rows.
type FeedbackStatsRepository struct {
	db *sqlx.DB
}

func NewFeedbackStatsRepository(db *sqlx.DB) *FeedbackStatsRepository {
	return &FeedbackStatsRepository{db: db}
}

var _ reputation.FeedbackStatsSource = (*FeedbackStatsRepository)(nil)

type ratingCount struct {
	Rating int `db:"rating"`
	Count  int `db:"count"`
}

func (r *FeedbackStatsRepository) GetStatsByCompanyID(ctx context.Context, companyID string) (*reputation.Stats, error) {
	var rows []ratingCount
	query := r.db.Rebind(ratingCountsQuery)
	if err := r.db.SelectContext(ctx, &rows, query, companyID, activeFeedbackStatus); err != nil {
		return nil, err
	}

	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return reputation.StatsFromCounts(companyID, counts), nil
}

func (r *FeedbackStatsRepository) CompanyIDsWithFeedback(ctx context.Context) ([]string, error) {
	var ids []string
	query := r.db.Rebind(companiesWithFeedbackQuery)
	if err := r.db.SelectContext(ctx, &ids, query, activeFeedbackStatus); err != nil {
		return nil, err
	}
	return ids, nil
}
