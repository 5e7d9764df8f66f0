package feedback

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/company"
	"github.com/frahmantamala/reputation-management/internal/core/common/validation"
	"github.com/frahmantamala/reputation-management/internal/core/events"
)

type CreateInput struct {
	UserID    string
	CompanyID string
	Rating    int
	Comment   *string
}

type UpdateInput struct {
	ID      string
	UserID  string
	Rating  *int
	Comment *string
}

type Service struct {
	repo      RepositoryAPI
	consumers ConsumerRepositoryAPI
	companies CompanyLookup
	users     UserLookup
	publisher Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, consumers ConsumerRepositoryAPI, companies CompanyLookup, users UserLookup, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		consumers: consumers,
		companies: companies,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// Create records feedback from the consumer profile of UserID. The target
// company must exist and be ACTIVE.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Feedback, error) {
	consumer, err := s.consumerOf(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	target, err := s.companies.FindByID(ctx, in.CompanyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up company", err)
	}
	if target == nil {
		return nil, internal.ErrCompanyNotFound
	}
	if !target.CanReceiveFeedback() {
		return nil, internal.ErrCompanyNotActive
	}

	rating, err := NewRating(in.Rating)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateComment(in.Comment); err != nil {
		return nil, err
	}

	fb := &Feedback{
		ConsumerID: consumer.ID,
		CompanyID:  target.ID,
		Rating:     rating,
		Comment:    in.Comment,
		Status:     StatusActive,
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		s.logger.Error("failed to create feedback", "company_id", in.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to create feedback", err)
	}

	s.publish(ctx, events.NewFeedbackSubmittedEvent(fb.ID, fb.CompanyID, int(fb.Rating)))
	return fb, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Feedback, error) {
	fb, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get feedback", err)
	}
	if fb == nil {
		return nil, internal.ErrFeedbackNotFound
	}
	return fb, nil
}

// List returns ACTIVE feedback only.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Category != "" && !company.IsValidCategory(filter.Category) {
		return nil, internal.NewValidationFieldError("category", "category is not supported", internal.ErrCodeInvalidCategory)
	}
	filter.Page, filter.Limit = validation.NormalizePage(filter.Page, filter.Limit)

	items, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list feedbacks", "error", err)
		return nil, internal.NewInternalError("failed to list feedbacks", err)
	}
	if items == nil {
		items = []*Feedback{}
	}

	return &ListResult{
		Feedbacks: items,
		Meta: company.PageMeta{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: validation.TotalPages(total, filter.Limit),
		},
	}, nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*Feedback, error) {
	fb, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwner(ctx, fb, in.UserID, "You can only update your own feedback"); err != nil {
		return nil, err
	}
	if fb.IsDeleted() {
		return nil, internal.ErrFeedbackDeleted
	}

	if in.Rating != nil {
		rating, err := NewRating(*in.Rating)
		if err != nil {
			return nil, err
		}
		fb.Rating = rating
	}
	if in.Comment != nil {
		if err := validation.ValidateComment(in.Comment); err != nil {
			return nil, err
		}
		fb.Comment = in.Comment
	}

	if err := s.repo.Update(ctx, fb); err != nil {
		s.logger.Error("failed to update feedback", "feedback_id", fb.ID, "error", err)
		return nil, internal.NewInternalError("failed to update feedback", err)
	}

	s.publish(ctx, events.NewFeedbackChangedEvent(fb.ID, fb.CompanyID, int(fb.Rating)))
	return fb, nil
}

// Delete is a soft delete: the row stays with status DELETED.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	fb, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureOwner(ctx, fb, userID, "You can only delete your own feedback"); err != nil {
		return err
	}

	fb.Status = StatusDeleted
	if err := s.repo.Update(ctx, fb); err != nil {
		s.logger.Error("failed to delete feedback", "feedback_id", fb.ID, "error", err)
		return internal.NewInternalError("failed to delete feedback", err)
	}

	s.publish(ctx, events.NewFeedbackChangedEvent(fb.ID, fb.CompanyID, int(fb.Rating)))
	return nil
}

func (s *Service) CreateConsumer(ctx context.Context, userID string) (*Consumer, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if !exists {
		return nil, internal.ErrUserNotFound
	}

	existing, err := s.consumers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up consumer", err)
	}
	if existing != nil {
		return nil, internal.ErrConsumerAlreadyExists
	}

	consumer := &Consumer{UserID: userID}
	if err := s.consumers.Create(ctx, consumer); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to create consumer", err)
	}
	return consumer, nil
}

func (s *Service) GetConsumer(ctx context.Context, id string) (*Consumer, error) {
	consumer, err := s.consumers.FindByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get consumer", err)
	}
	if consumer == nil {
		return nil, internal.ErrConsumerNotFound
	}
	return consumer, nil
}

func (s *Service) GetConsumerByUserID(ctx context.Context, userID string) (*Consumer, error) {
	return s.consumerOf(ctx, userID)
}

func (s *Service) consumerOf(ctx context.Context, userID string) (*Consumer, error) {
	consumer, err := s.consumers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up consumer", err)
	}
	if consumer == nil {
		return nil, internal.ErrConsumerNotFound
	}
	return consumer, nil
}

func (s *Service) ensureOwner(ctx context.Context, fb *Feedback, userID, message string) error {
	consumer, err := s.consumers.FindByUserID(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to look up consumer", err)
	}
	if consumer == nil || consumer.ID != fb.ConsumerID {
		return internal.NewForbiddenError(message, internal.ErrCodeNotFeedbackOwner)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish feedback event", "event_type", event.EventType(), "error", err)
	}
}
