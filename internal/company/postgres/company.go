package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/company"
	"github.com/frahmantamala/reputation-management/internal/core/common/dberr"
	companyDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/company"
	userDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/user"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

var (
	_ company.RepositoryAPI = (*CompanyRepository)(nil)
	_ company.UserLookup    = (*CompanyRepository)(nil)
)

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *CompanyRepository) FindByUserID(ctx context.Context, userID string) (*company.Company, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *CompanyRepository) FindByCNPJ(ctx context.Context, cnpj string) (*company.Company, error) {
	return r.findOne(ctx, "cnpj = ?", cnpj)
}

func (r *CompanyRepository) findOne(ctx context.Context, query string, arg interface{}) (*company.Company, error) {
	var row companyDatamodel.Company
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return company.FromDataModel(&row), nil
}

func (r *CompanyRepository) FindAll(ctx context.Context, filter company.ListFilter) ([]*company.Company, int64, error) {
	query := r.db.WithContext(ctx).Model(&companyDatamodel.Company{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []companyDatamodel.Company
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	companies := make([]*company.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, company.FromDataModel(&rows[i]))
	}
	return companies, total, nil
}

func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	row := c.ToDataModel()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			if strings.Contains(dberr.ViolatedColumn(err), "cnpj") {
				return internal.ErrCNPJAlreadyRegistered
			}
			return internal.ErrCompanyAlreadyExists
		}
		return err
	}
	*c = *company.FromDataModel(row)
	return nil
}

func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) error {
	result := r.db.WithContext(ctx).
		Model(&companyDatamodel.Company{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":   c.Name,
			"status": string(c.Status),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	return count > 0, err
}
