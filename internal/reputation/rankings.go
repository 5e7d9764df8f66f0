package reputation

import (
	"context"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/company"
	"github.com/frahmantamala/reputation-management/internal/core/common/validation"
)

// GetRankings orders companies by average rating. Position is the rank in
// the unfiltered ordering, so a category filter leaves gaps instead of
// renumbering.
func (s *Service) GetRankings(ctx context.Context, in RankingsInput) (*RankingsView, error) {
	if in.Category != "" && !company.IsValidCategory(in.Category) {
		return nil, internal.NewValidationFieldError("category", "category is not supported", internal.ErrCodeInvalidCategory)
	}

	limit := validation.ClampLimit(in.Limit, DefaultRankingsLimit, MaxRankingsLimit)

	ordered, err := s.repo.FindMetricsOrderedByRating(ctx, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to load rankings", err)
	}

	rankings := make([]Ranking, 0, len(ordered))
	for i, m := range ordered {
		c, err := s.companies.FindByID(ctx, m.CompanyID)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up company", err)
		}
		if c == nil {
			s.logger.Warn("skipping orphan reputation metrics", "company_id", m.CompanyID)
			continue
		}
		if in.Category != "" && string(c.Category) != in.Category {
			continue
		}

		rankings = append(rankings, Ranking{
			Position:       i + 1,
			CompanyID:      m.CompanyID,
			CompanyName:    c.Name,
			Category:       string(c.Category),
			AverageRating:  m.AverageRating,
			TotalFeedbacks: m.TotalFeedbacks,
			Distribution:   m.Distribution,
		})
	}

	return &RankingsView{
		Rankings: rankings,
		Meta: RankingsMeta{
			Total: len(rankings),
			Limit: limit,
		},
	}, nil
}
