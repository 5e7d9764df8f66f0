package postgres

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/auth"
	"github.com/frahmantamala/reputation-management/internal/core/common/dberr"
	companyDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/company"
	iamDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/iam"
	userDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/user"
	"github.com/frahmantamala/reputation-management/internal/iam"
)

type IAMRepository struct {
	db *gorm.DB
}

func NewIAMRepository(db *gorm.DB) *IAMRepository {
	return &IAMRepository{db: db}
}

var _ iam.Store = (*IAMRepository)(nil)

func (r *IAMRepository) FindSubject(ctx context.Context, userID string) (*iam.Subject, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "status", "roles").
		Where("id = ?", userID).
		First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	roles, err := decodeRoles(row.Roles)
	if err != nil {
		return nil, err
	}
	return &iam.Subject{
		ID:     row.ID,
		Status: auth.UserStatus(row.Status),
		Roles:  roles,
	}, nil
}

func (r *IAMRepository) CompanyIDByUserID(ctx context.Context, userID string) (string, error) {
	var row companyDatamodel.Company
	err := r.db.WithContext(ctx).
		Select("id").
		Where("user_id = ?", userID).
		First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return row.ID, nil
}

func (r *IAMRepository) FindRoleByID(ctx context.Context, id string) (*iam.Role, error) {
	var row iamDatamodel.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toRole(&row), nil
}

func (r *IAMRepository) ListRoles(ctx context.Context) ([]*iam.Role, error) {
	var rows []iamDatamodel.Role
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	roles := make([]*iam.Role, 0, len(rows))
	for i := range rows {
		roles = append(roles, toRole(&rows[i]))
	}
	return roles, nil
}

func (r *IAMRepository) FindPermission(ctx context.Context, resource, action string) (*iam.Permission, error) {
	var row iamDatamodel.Permission
	err := r.db.WithContext(ctx).
		Where("resource = ? AND action = ?", resource, action).
		First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toPermission(&row), nil
}

func (r *IAMRepository) ListPermissions(ctx context.Context) ([]*iam.Permission, error) {
	var rows []iamDatamodel.Permission
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPermissions(rows), nil
}

func (r *IAMRepository) PermissionIDsByRoleID(ctx context.Context, roleID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&iamDatamodel.RolePermission{}).
		Where("role_id = ?", roleID).
		Pluck("permission_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *IAMRepository) PermissionsByRoleIDs(ctx context.Context, roleIDs []string) ([]*iam.Permission, error) {
	if len(roleIDs) == 0 {
		return []*iam.Permission{}, nil
	}

	var rows []iamDatamodel.Permission
	err := r.db.WithContext(ctx).
		Model(&iamDatamodel.Permission{}).
		Select("DISTINCT permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Order("permissions.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPermissions(rows), nil
}

func (r *IAMRepository) FindAssignmentsByUserID(ctx context.Context, userID string) ([]*iam.Assignment, error) {
	var rows []iamDatamodel.UserRole
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	assignments := make([]*iam.Assignment, 0, len(rows))
	for i := range rows {
		assignments = append(assignments, toAssignment(&rows[i]))
	}
	return assignments, nil
}

func (r *IAMRepository) FindAssignment(ctx context.Context, userID, roleID string) (*iam.Assignment, error) {
	var row iamDatamodel.UserRole
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toAssignment(&row), nil
}

func (r *IAMRepository) Assign(ctx context.Context, userID string, role *iam.Role) (*iam.Assignment, error) {
	row := &iamDatamodel.UserRole{UserID: userID, RoleID: role.ID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			if dberr.IsUniqueViolation(err) {
				return internal.ErrRoleAlreadyAssigned
			}
			return err
		}
		return updateRoleTags(tx, userID, func(tags []string) []string {
			for _, t := range tags {
				if t == role.Name {
					return tags
				}
			}
			return append(tags, role.Name)
		})
	})
	if err != nil {
		return nil, err
	}
	return toAssignment(row), nil
}

func (r *IAMRepository) Unassign(ctx context.Context, userID string, role *iam.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND role_id = ?", userID, role.ID).Delete(&iamDatamodel.UserRole{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrRoleNotAssigned
		}
		return updateRoleTags(tx, userID, func(tags []string) []string {
			kept := tags[:0]
			for _, t := range tags {
				if t != role.Name {
					kept = append(kept, t)
				}
			}
			return kept
		})
	})
}

func updateRoleTags(tx *gorm.DB, userID string, mutate func([]string) []string) error {
	var row userDatamodel.User
	if err := tx.Select("id", "roles").Where("id = ?", userID).First(&row).Error; err != nil {
		return err
	}
	tags, err := decodeRoles(row.Roles)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(mutate(tags))
	if err != nil {
		return err
	}
	return tx.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("roles", datatypes.JSON(encoded)).Error
}

func decodeRoles(raw datatypes.JSON) ([]string, error) {
	roles := []string{}
	if len(raw) == 0 {
		return roles, nil
	}
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func toRole(row *iamDatamodel.Role) *iam.Role {
	return &iam.Role{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}

func toPermission(row *iamDatamodel.Permission) *iam.Permission {
	return &iam.Permission{
		ID:          row.ID,
		Name:        row.Name,
		Resource:    row.Resource,
		Action:      row.Action,
		Description: row.Description,
	}
}

func toPermissions(rows []iamDatamodel.Permission) []*iam.Permission {
	permissions := make([]*iam.Permission, 0, len(rows))
	for i := range rows {
		permissions = append(permissions, toPermission(&rows[i]))
	}
	return permissions
}

func toAssignment(row *iamDatamodel.UserRole) *iam.Assignment {
	return &iam.Assignment{
		ID:        row.ID,
		UserID:    row.UserID,
		RoleID:    row.RoleID,
		CreatedAt: row.CreatedAt,
	}
}
