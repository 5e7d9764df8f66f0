package feedback

import (
	"context"
	"time"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/company"
	feedbackDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/feedback"
	"github.com/frahmantamala/reputation-management/internal/core/events"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusModerated Status = "MODERATED"
	StatusDeleted   Status = "DELETED"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is an integer star score in [1,5].
type Rating int

func NewRating(n int) (Rating, error) {
	if n < MinRating || n > MaxRating {
		return 0, internal.NewValidationFieldError("rating", "rating must be an integer between 1 and 5", internal.ErrCodeInvalidRating)
	}
	return Rating(n), nil
}

type Feedback struct {
	ID         string    `json:"id"`
	ConsumerID string    `json:"consumerId"`
	CompanyID  string    `json:"companyId"`
	Rating     Rating    `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (f *Feedback) IsDeleted() bool {
	return f.Status == StatusDeleted
}

func (f *Feedback) ToDataModel() *feedbackDatamodel.Feedback {
	return &feedbackDatamodel.Feedback{
		ID:         f.ID,
		ConsumerID: f.ConsumerID,
		CompanyID:  f.CompanyID,
		Rating:     int(f.Rating),
		Comment:    f.Comment,
		Status:     string(f.Status),
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func FromDataModel(row *feedbackDatamodel.Feedback) *Feedback {
	return &Feedback{
		ID:         row.ID,
		ConsumerID: row.ConsumerID,
		CompanyID:  row.CompanyID,
		Rating:     Rating(row.Rating),
		Comment:    row.Comment,
		Status:     Status(row.Status),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

type Consumer struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListFilter struct {
	ConsumerID string
	CompanyID  string
	Category   string
	Search     string
	Page       int
	Limit      int
}

type ListResult struct {
	Feedbacks []*Feedback      `json:"feedbacks"`
	Meta      company.PageMeta `json:"meta"`
}

type RepositoryAPI interface {
	FindByID(ctx context.Context, id string) (*Feedback, error)
	FindAll(ctx context.Context, filter ListFilter) ([]*Feedback, int64, error)
	Create(ctx context.Context, f *Feedback) error
	Update(ctx context.Context, f *Feedback) error
}

type ConsumerRepositoryAPI interface {
	FindByID(ctx context.Context, id string) (*Consumer, error)
	FindByUserID(ctx context.Context, userID string) (*Consumer, error)
	Create(ctx context.Context, c *Consumer) error
}

// CompanyLookup resolves the company a feedback targets.
type CompanyLookup interface {
	FindByID(ctx context.Context, id string) (*company.Company, error)
}

type UserLookup interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Publisher is satisfied by the in-process event bus.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ServiceAPI interface {
	Create(ctx context.Context, in CreateInput) (*Feedback, error)
	Get(ctx context.Context, id string) (*Feedback, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, in UpdateInput) (*Feedback, error)
	Delete(ctx context.Context, id, userID string) error
	CreateConsumer(ctx context.Context, userID string) (*Consumer, error)
	GetConsumer(ctx context.Context, id string) (*Consumer, error)
	GetConsumerByUserID(ctx context.Context, userID string) (*Consumer, error)
}
