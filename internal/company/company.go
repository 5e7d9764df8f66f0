package company

import (
	"context"
	"time"

	companyDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/company"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusPending  Status = "PENDING"
)

func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

type Company struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CNPJ      string    `json:"cnpj"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CanReceiveFeedback is true only for ACTIVE companies.
func (c *Company) CanReceiveFeedback() bool {
	return c.Status == StatusActive
}

func (c *Company) IsOwnedBy(userID string) bool {
	return c.UserID == userID
}

func (c *Company) ToDataModel() *companyDatamodel.Company {
	return &companyDatamodel.Company{
		ID:        c.ID,
		UserID:    c.UserID,
		CNPJ:      c.CNPJ,
		Name:      c.Name,
		Category:  string(c.Category),
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModel(row *companyDatamodel.Company) *Company {
	if row == nil {
		return nil
	}
	return &Company{
		ID:        row.ID,
		UserID:    row.UserID,
		CNPJ:      row.CNPJ,
		Name:      row.Name,
		Category:  Category(row.Category),
		Status:    Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type ListFilter struct {
	Status   string
	Category string
	Search   string
	Page     int
	Limit    int
}

type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ListResult struct {
	Companies []*Company `json:"companies"`
	Meta      PageMeta   `json:"meta"`
}

type RepositoryAPI interface {
	FindByID(ctx context.Context, id string) (*Company, error)
	FindByUserID(ctx context.Context, userID string) (*Company, error)
	FindByCNPJ(ctx context.Context, cnpj string) (*Company, error)
	FindAll(ctx context.Context, filter ListFilter) ([]*Company, int64, error)
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
}

// UserLookup confirms that a user account exists.
type UserLookup interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

type ServiceAPI interface {
	Create(ctx context.Context, in CreateInput) (*Company, error)
	Get(ctx context.Context, id string) (*Company, error)
	GetByUserID(ctx context.Context, userID string) (*Company, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, in UpdateInput) (*Company, error)
}
