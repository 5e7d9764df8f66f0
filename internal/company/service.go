package company

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/core/common/validation"
)

type CreateInput struct {
	UserID   string
	CNPJ     string
	Name     string
	Category string
}

type UpdateInput struct {
	ID     string
	UserID string
	Name   *string
	Status *string
}

type Service struct {
	repo   RepositoryAPI
	users  UserLookup
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, users UserLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Company, error) {
	if err := validation.ValidateName("name", in.Name); err != nil {
		return nil, err
	}
	if !IsValidCategory(in.Category) {
		return nil, internal.NewValidationFieldError("category", "category is not supported", internal.ErrCodeInvalidCategory)
	}

	exists, err := s.users.UserExists(ctx, in.UserID)
	if err != nil {
		s.logger.Error("failed to look up user", "user_id", in.UserID, "error", err)
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if !exists {
		return nil, internal.ErrUserNotFound
	}

	owned, err := s.repo.FindByUserID(ctx, in.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up company", err)
	}
	if owned != nil {
		return nil, internal.ErrCompanyAlreadyExists
	}

	cnpj, err := NewCNPJ(in.CNPJ)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.FindByCNPJ(ctx, cnpj.String())
	if err != nil {
		return nil, internal.NewInternalError("failed to look up cnpj", err)
	}
	if taken != nil {
		return nil, internal.ErrCNPJAlreadyRegistered
	}

	company := &Company{
		UserID:   in.UserID,
		CNPJ:     cnpj.String(),
		Name:     strings.TrimSpace(in.Name),
		Category: Category(in.Category),
		Status:   StatusActive,
	}
	if err := s.repo.Create(ctx, company); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to create company", "user_id", in.UserID, "error", err)
		return nil, internal.NewInternalError("failed to create company", err)
	}

	s.logger.Info("company created", "company_id", company.ID, "user_id", company.UserID)
	return company, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get company", err)
	}
	if company == nil {
		return nil, internal.ErrCompanyNotFound
	}
	return company, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (*Company, error) {
	company, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get company", err)
	}
	if company == nil {
		return nil, internal.ErrCompanyNotFound
	}
	return company, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, internal.NewValidationFieldError("status", "status is not supported", internal.ErrCodeInvalidCompanyStatus)
	}
	if filter.Category != "" && !IsValidCategory(filter.Category) {
		return nil, internal.NewValidationFieldError("category", "category is not supported", internal.ErrCodeInvalidCategory)
	}
	filter.Page, filter.Limit = validation.NormalizePage(filter.Page, filter.Limit)

	companies, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list companies", "error", err)
		return nil, internal.NewInternalError("failed to list companies", err)
	}
	if companies == nil {
		companies = []*Company{}
	}

	return &ListResult{
		Companies: companies,
		Meta: PageMeta{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: validation.TotalPages(total, filter.Limit),
		},
	}, nil
}

// Update changes name and status. Only the owning user may update a company.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*Company, error) {
	company, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !company.IsOwnedBy(in.UserID) {
		return nil, internal.ErrNotCompanyOwner
	}

	if in.Name != nil {
		if err := validation.ValidateName("name", *in.Name); err != nil {
			return nil, err
		}
		company.Name = strings.TrimSpace(*in.Name)
	}
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, internal.NewValidationFieldError("status", "status is not supported", internal.ErrCodeInvalidCompanyStatus)
		}
		company.Status = Status(*in.Status)
	}

	if err := s.repo.Update(ctx, company); err != nil {
		s.logger.Error("failed to update company", "company_id", in.ID, "error", err)
		return nil, internal.NewInternalError("failed to update company", err)
	}
	return company, nil
}
