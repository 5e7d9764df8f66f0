package auth

import (
	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/core/common/validation"
)

type RegisterDTO struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Name        *string `json:"name,omitempty"`
	UserType    string  `json:"userType"`
	CNPJ        string  `json:"cnpj,omitempty"`
	CompanyName string  `json:"companyName,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenDTO is accepted when the refresh cookie is absent.
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	Message string      `json:"message"`
	User    *PublicUser `json:"user,omitempty"`
	Tokens  *Tokens     `json:"tokens,omitempty"`
}

func (d RegisterDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	v.Field("name", d.Name).MaxLength(validation.MaxNameLength)
	v.Field("userType", d.UserType).OneOf([]string{string(UserTypeConsumer), string(UserTypeCompany)}, internal.ErrCodeInvalidUserType)
	return v.Validate()
}

func (d RegisterDTO) ToInput() RegisterInput {
	return RegisterInput{
		Email:       d.Email,
		Password:    d.Password,
		Name:        d.Name,
		UserType:    UserType(d.UserType),
		CNPJ:        d.CNPJ,
		CompanyName: d.CompanyName,
		Category:    d.Category,
	}
}
