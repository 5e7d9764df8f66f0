package reputation

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/reputation-management/internal/company"
)

const (
	DefaultHistoryLimit  = 30
	MaxHistoryLimit      = 365
	DefaultRankingsLimit = 100
	MaxRankingsLimit     = 500
)

// ErrMetricsExists is returned by CreateMetrics when another writer created
// the company's row first.
var ErrMetricsExists = errors.New("reputation metrics already exist")

type CalculateInput struct {
	CompanyID   string `json:"companyId"`
	SaveHistory bool   `json:"saveHistory"`
}

type HistoryInput struct {
	CompanyID string
	Limit     int
}

type RankingsInput struct {
	Limit    int
	Category string
}

type DistributionView struct {
	Distribution
	Percentages Percentages `json:"percentages"`
}

// MetricsView is Metrics with the percentage breakdown attached.
type MetricsView struct {
	ID             string           `json:"id"`
	CompanyID      string           `json:"companyId"`
	AverageRating  float64          `json:"averageRating"`
	TotalFeedbacks int              `json:"totalFeedbacks"`
	Distribution   DistributionView `json:"distribution"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func newMetricsView(m *Metrics) *MetricsView {
	return &MetricsView{
		ID:             m.ID,
		CompanyID:      m.CompanyID,
		AverageRating:  m.AverageRating,
		TotalFeedbacks: m.TotalFeedbacks,
		Distribution: DistributionView{
			Distribution: m.Distribution,
			Percentages:  m.Distribution.Percentages(),
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type HistoryView struct {
	History []*HistoryEntry `json:"history"`
	Trend   Trend           `json:"trend"`
}

type Ranking struct {
	Position       int          `json:"position"`
	CompanyID      string       `json:"companyId"`
	CompanyName    string       `json:"companyName"`
	Category       string       `json:"category"`
	AverageRating  float64      `json:"averageRating"`
	TotalFeedbacks int          `json:"totalFeedbacks"`
	Distribution   Distribution `json:"distribution"`
}

type RankingsMeta struct {
	Total int `json:"total"`
	Limit int `json:"limit"`
}

type RankingsView struct {
	Rankings []Ranking    `json:"rankings"`
	Meta     RankingsMeta `json:"meta"`
}

// FeedbackStatsSource reads aggregates over ACTIVE feedback only.
type FeedbackStatsSource interface {
	// GetStatsByCompanyID returns nil when the company has no active feedback.
	GetStatsByCompanyID(ctx context.Context, companyID string) (*Stats, error)
	CompanyIDsWithFeedback(ctx context.Context) ([]string, error)
}

type RepositoryAPI interface {
	FindMetricsByCompanyID(ctx context.Context, companyID string) (*Metrics, error)
	CreateMetrics(ctx context.Context, m *Metrics) error
	UpdateMetrics(ctx context.Context, m *Metrics) error
	// UpdateMetricsWithHistory appends previous to the history and stores m
	// in one transaction.
	UpdateMetricsWithHistory(ctx context.Context, previous, m *Metrics) (*HistoryEntry, error)
	FindHistoryByCompanyID(ctx context.Context, companyID string, limit int) ([]*HistoryEntry, error)
	// FindMetricsOrderedByRating orders by average desc, total desc, company id.
	FindMetricsOrderedByRating(ctx context.Context, limit int) ([]*Metrics, error)
}

type CompanyLookup interface {
	FindByID(ctx context.Context, id string) (*company.Company, error)
}

type ServiceAPI interface {
	CalculateReputation(ctx context.Context, in CalculateInput) (*Metrics, error)
	GetReputationMetrics(ctx context.Context, companyID string) (*MetricsView, error)
	GetReputationHistory(ctx context.Context, in HistoryInput) (*HistoryView, error)
	GetRankings(ctx context.Context, in RankingsInput) (*RankingsView, error)
}
