package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/auth"
	"github.com/frahmantamala/reputation-management/internal/core/common/dberr"
	companyDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/company"
	feedbackDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/feedback"
	iamDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/iam"
	userDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ auth.RepositoryAPI = (*UserRepository)(nil)

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(email))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromDataModel(&row)
}

func (r *UserRepository) UpdateRefreshTokenHash(ctx context.Context, id string, hash *string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("refresh_token_hash", hash).Error
}

func (r *UserRepository) CNPJExists(ctx context.Context, cnpj string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&companyDatamodel.Company{}).
		Where("cnpj = ?", cnpj).
		Count(&count).Error
	return count > 0, err
}

// CreateAccount inserts the user, its company or consumer profile and the
// user_roles rows matching its role tags inside one transaction.
func (r *UserRepository) CreateAccount(ctx context.Context, account auth.NewAccount) (*auth.User, error) {
	row, err := ToDataModel(account.User)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}

		if account.Company != nil {
			company := &companyDatamodel.Company{
				UserID:   row.ID,
				CNPJ:     account.Company.CNPJ,
				Name:     account.Company.Name,
				Category: account.Company.Category,
				Status:   "ACTIVE",
			}
			if err := tx.Create(company).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&feedbackDatamodel.Consumer{UserID: row.ID}).Error; err != nil {
				return err
			}
		}

		var roles []iamDatamodel.Role
		if err := tx.Where("name IN ?", account.User.Roles).Find(&roles).Error; err != nil {
			return err
		}
		for _, role := range roles {
			if err := tx.Create(&iamDatamodel.UserRole{UserID: row.ID, RoleID: role.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			if strings.Contains(dberr.ViolatedColumn(err), "cnpj") {
				return nil, internal.ErrCNPJAlreadyRegistered
			}
			return nil, internal.NewConflictError("Email already registered", internal.ErrCodeEmailAlreadyRegistered)
		}
		return nil, err
	}

	return FromDataModel(row)
}

func ToDataModel(u *auth.User) (*userDatamodel.User, error) {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return nil, fmt.Errorf("encode roles: %w", err)
	}
	return &userDatamodel.User{
		ID:               u.ID,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Name:             u.Name,
		Roles:            datatypes.JSON(roles),
		Status:           string(u.Status),
		RefreshTokenHash: u.RefreshTokenHash,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}, nil
}

func FromDataModel(row *userDatamodel.User) (*auth.User, error) {
	var roles []string
	if len(row.Roles) > 0 {
		if err := json.Unmarshal(row.Roles, &roles); err != nil {
			return nil, fmt.Errorf("decode roles for user %s: %w", row.ID, err)
		}
	}
	if roles == nil {
		roles = []string{}
	}
	return &auth.User{
		ID:               row.ID,
		Email:            row.Email,
		PasswordHash:     row.PasswordHash,
		Name:             row.Name,
		Roles:            roles,
		Status:           auth.UserStatus(row.Status),
		RefreshTokenHash: row.RefreshTokenHash,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}
