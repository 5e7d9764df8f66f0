package reputation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/core/common/validation"
)

type Service struct {
	repo      RepositoryAPI
	stats     FeedbackStatsSource
	companies CompanyLookup
	logger    *slog.Logger
	locks     *keyedMutex
}

func NewService(repo RepositoryAPI, stats FeedbackStatsSource, companies CompanyLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		stats:     stats,
		companies: companies,
		logger:    logger,
		locks:     newKeyedMutex(),
	}
}

var _ ServiceAPI = (*Service)(nil)

// CalculateReputation recomputes the company's metrics from its active
// feedback. With SaveHistory the row is snapshotted before it is overwritten;
// an unchanged row is neither snapshotted nor rewritten. Calls for one company
// are serialised for the snapshot and the overwrite.
func (s *Service) CalculateReputation(ctx context.Context, in CalculateInput) (*Metrics, error) {
	if err := s.ensureCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(in.CompanyID)
	defer unlock()

	stats, err := s.loadStats(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindMetricsByCompanyID(ctx, in.CompanyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load reputation metrics", err)
	}

	if existing == nil {
		metrics, err := s.create(ctx, stats)
		if err == nil || !errors.Is(err, ErrMetricsExists) {
			return metrics, err
		}
		// another process created the row between our read and write
		existing, err = s.repo.FindMetricsByCompanyID(ctx, in.CompanyID)
		if err != nil || existing == nil {
			return nil, internal.NewInternalError("failed to load reputation metrics", err)
		}
	}

	if existing.Matches(stats) {
		s.logger.Debug("reputation unchanged", "company_id", in.CompanyID)
		return existing, nil
	}

	previous := *existing
	existing.Apply(stats)
	if in.SaveHistory {
		_, err = s.repo.UpdateMetricsWithHistory(ctx, &previous, existing)
	} else {
		err = s.repo.UpdateMetrics(ctx, existing)
	}
	if err != nil {
		s.logger.Error("failed to update reputation metrics", "company_id", in.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to update reputation metrics", err)
	}

	s.logger.Info("reputation recalculated",
		"company_id", in.CompanyID,
		"average_rating", existing.AverageRating,
		"total_feedbacks", existing.TotalFeedbacks,
		"history_saved", in.SaveHistory)
	return existing, nil
}

// GetReputationMetrics materialises the metrics row on first access.
func (s *Service) GetReputationMetrics(ctx context.Context, companyID string) (*MetricsView, error) {
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return nil, err
	}

	metrics, err := s.repo.FindMetricsByCompanyID(ctx, companyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load reputation metrics", err)
	}
	if metrics != nil {
		return newMetricsView(metrics), nil
	}

	unlock := s.locks.Lock(companyID)
	defer unlock()

	stats, err := s.loadStats(ctx, companyID)
	if err != nil {
		return nil, err
	}

	metrics, err = s.create(ctx, stats)
	if errors.Is(err, ErrMetricsExists) {
		metrics, err = s.repo.FindMetricsByCompanyID(ctx, companyID)
		if err == nil && metrics == nil {
			err = errors.New("metrics row vanished after conflict")
		}
		if err != nil {
			return nil, internal.NewInternalError("failed to load reputation metrics", err)
		}
	} else if err != nil {
		return nil, err
	}
	return newMetricsView(metrics), nil
}

// GetReputationHistory lists snapshots newest first. The trend compares the
// current average with the most recent snapshot only.
func (s *Service) GetReputationHistory(ctx context.Context, in HistoryInput) (*HistoryView, error) {
	if err := s.ensureCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}

	current, err := s.repo.FindMetricsByCompanyID(ctx, in.CompanyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load reputation metrics", err)
	}
	if current == nil {
		return nil, internal.ErrReputationNotFound
	}

	limit := validation.ClampLimit(in.Limit, DefaultHistoryLimit, MaxHistoryLimit)

	entries, err := s.repo.FindHistoryByCompanyID(ctx, in.CompanyID, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to load reputation history", err)
	}
	if entries == nil {
		entries = []*HistoryEntry{}
	}

	var latest *HistoryEntry
	if len(entries) > 0 {
		latest = entries[0]
	}

	return &HistoryView{
		History: entries,
		Trend:   TrendBetween(current.AverageRating, latest),
	}, nil
}

func (s *Service) ensureCompany(ctx context.Context, companyID string) error {
	c, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return internal.NewInternalError("failed to look up company", err)
	}
	if c == nil {
		return internal.ErrCompanyNotFound
	}
	return nil
}

func (s *Service) loadStats(ctx context.Context, companyID string) (*Stats, error) {
	stats, err := s.stats.GetStatsByCompanyID(ctx, companyID)
	if err != nil {
		s.logger.Error("failed to aggregate feedback", "company_id", companyID, "error", err)
		return nil, internal.NewInternalError("failed to aggregate feedback", err)
	}
	if stats == nil {
		return nil, internal.ErrNoFeedback
	}
	return stats, nil
}

func (s *Service) create(ctx context.Context, stats *Stats) (*Metrics, error) {
	metrics := NewMetrics(stats)
	if err := s.repo.CreateMetrics(ctx, metrics); err != nil {
		if errors.Is(err, ErrMetricsExists) {
			return nil, err
		}
		s.logger.Error("failed to create reputation metrics", "company_id", stats.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to create reputation metrics", err)
	}
	return metrics, nil
}
