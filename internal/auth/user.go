package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/reputation-management/internal"
)

type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusDisabled UserStatus = "DISABLED"
)

// Role tags carried on the user row and inside tokens.
const (
	RoleConsumer     = "CONSUMER"
	RoleCompanyOwner = "COMPANY_OWNER"
	RoleCompanyAdmin = "COMPANY_ADMIN"
	RoleSuperAdmin   = "SUPER_ADMIN"
)

type UserType string

const (
	UserTypeConsumer UserType = "consumer"
	UserTypeCompany  UserType = "company"
)

// DefaultRoles returns the role tags a new account of the given type starts with.
func (t UserType) DefaultRoles() []string {
	if t == UserTypeCompany {
		return []string{RoleCompanyOwner}
	}
	return []string{RoleConsumer}
}

type User struct {
	ID               string
	Email            string
	PasswordHash     string
	Name             *string
	Roles            []string
	Status           UserStatus
	RefreshTokenHash *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PublicUser is the projection returned to clients. It never carries hashes.
type PublicUser struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name,omitempty"`
	Roles     []string   `json:"roles"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (u *User) Public() *PublicUser {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Roles:     roles,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CompanyProfile is the company created alongside a company-owner account.
type CompanyProfile struct {
	CNPJ     string
	Name     string
	Category string
}

// NewAccount is everything Register persists in one transaction.
// Exactly one of Company or a consumer profile is created.
type NewAccount struct {
	User    *User
	Company *CompanyProfile
}

type RepositoryAPI interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	UpdateRefreshTokenHash(ctx context.Context, id string, hash *string) error
	CNPJExists(ctx context.Context, cnpj string) (bool, error)
	CreateAccount(ctx context.Context, account NewAccount) (*User, error)
}

type ServiceAPI interface {
	Register(ctx context.Context, in RegisterInput, meta internal.RequestMeta) (*User, error)
	Login(ctx context.Context, in LoginInput, meta internal.RequestMeta) (*User, error)
	GenerateTokens(ctx context.Context, user *User) (Tokens, error)
	Refresh(ctx context.Context, refreshToken string, meta internal.RequestMeta) (Tokens, error)
	Logout(ctx context.Context, userID string, meta internal.RequestMeta) error
}
