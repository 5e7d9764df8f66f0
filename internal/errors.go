package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized    ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
	ErrorTypeTooManyRequests ErrorType = "TOO_MANY_REQUESTS"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"

	ErrCodeEmailRequired          ErrorCode = "EMAIL_REQUIRED"
	ErrCodeInvalidEmail           ErrorCode = "INVALID_EMAIL"
	ErrCodePasswordRequired       ErrorCode = "PASSWORD_REQUIRED"
	ErrCodeInvalidPassword        ErrorCode = "INVALID_PASSWORD"
	ErrCodeEmailAlreadyRegistered ErrorCode = "EMAIL_ALREADY_REGISTERED"
	ErrCodeInvalidUserType        ErrorCode = "INVALID_USER_TYPE"

	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidTokenType    ErrorCode = "INVALID_TOKEN_TYPE"
	ErrCodeInvalidRefreshToken ErrorCode = "INVALID_REFRESH_TOKEN"
	ErrCodeAuthRequired        ErrorCode = "AUTHENTICATION_REQUIRED"
	ErrCodePermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"

	ErrCodeRoleNotFound        ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleAlreadyAssigned ErrorCode = "ROLE_ALREADY_ASSIGNED"
	ErrCodeRoleNotAssigned     ErrorCode = "ROLE_NOT_ASSIGNED"

	ErrCodeInvalidCNPJ           ErrorCode = "INVALID_CNPJ"
	ErrCodeInvalidCategory       ErrorCode = "INVALID_CATEGORY"
	ErrCodeInvalidCompanyStatus  ErrorCode = "INVALID_COMPANY_STATUS"
	ErrCodeCNPJAlreadyRegistered ErrorCode = "CNPJ_ALREADY_REGISTERED"
	ErrCodeCompanyNotFound       ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeCompanyAlreadyExists  ErrorCode = "COMPANY_ALREADY_EXISTS"
	ErrCodeNotCompanyOwner       ErrorCode = "NOT_COMPANY_OWNER"

	ErrCodeInvalidRating         ErrorCode = "INVALID_RATING"
	ErrCodeFeedbackNotFound      ErrorCode = "FEEDBACK_NOT_FOUND"
	ErrCodeNotFeedbackOwner      ErrorCode = "NOT_FEEDBACK_OWNER"
	ErrCodeFeedbackDeleted       ErrorCode = "FEEDBACK_DELETED"
	ErrCodeCompanyNotActive      ErrorCode = "COMPANY_NOT_ACTIVE"
	ErrCodeConsumerNotFound      ErrorCode = "CONSUMER_NOT_FOUND"
	ErrCodeConsumerAlreadyExists ErrorCode = "CONSUMER_ALREADY_EXISTS"

	ErrCodeNoFeedback         ErrorCode = "NO_FEEDBACK"
	ErrCodeReputationNotFound ErrorCode = "REPUTATION_NOT_FOUND"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy so shared sentinel values are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is matches any AppError carrying the same type and code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewTooManyRequestsError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeTooManyRequests,
		Code:       ErrCodeRateLimited,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

var (
	ErrInvalidCredentials  = NewUnauthorizedError("Invalid credentials", ErrCodeInvalidCredentials)
	ErrInvalidRefreshToken = NewUnauthorizedError("Invalid refresh token", ErrCodeInvalidRefreshToken)
	ErrTokenInvalid        = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired        = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInvalidTokenType    = NewUnauthorizedError("Invalid token type", ErrCodeInvalidTokenType)
	ErrAuthRequired        = NewUnauthorizedError("Authentication required", ErrCodeAuthRequired)
	ErrPermissionDenied    = NewForbiddenError("Insufficient permissions", ErrCodePermissionDenied)
	ErrUserNotFound        = NewNotFoundError("User not found", ErrCodeUserNotFound)

	ErrRoleNotFound        = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrRoleAlreadyAssigned = NewConflictError("User already has this role", ErrCodeRoleAlreadyAssigned)
	ErrRoleNotAssigned     = NewNotFoundError("User does not have this role", ErrCodeRoleNotAssigned)

	ErrCompanyNotFound       = NewNotFoundError("Company not found", ErrCodeCompanyNotFound)
	ErrCompanyAlreadyExists  = NewConflictError("User already has a company", ErrCodeCompanyAlreadyExists)
	ErrCNPJAlreadyRegistered = NewConflictError("CNPJ already registered", ErrCodeCNPJAlreadyRegistered)
	ErrNotCompanyOwner       = NewForbiddenError("You can only update your own company", ErrCodeNotCompanyOwner)

	ErrFeedbackNotFound      = NewNotFoundError("Feedback not found", ErrCodeFeedbackNotFound)
	ErrCompanyNotActive      = NewValidationError("Company is not active and cannot receive feedback", ErrCodeCompanyNotActive)
	ErrConsumerNotFound      = NewNotFoundError("Consumer not found", ErrCodeConsumerNotFound)
	ErrConsumerAlreadyExists = NewConflictError("Consumer profile already exists", ErrCodeConsumerAlreadyExists)
	ErrFeedbackDeleted       = NewForbiddenError("Cannot update deleted feedback", ErrCodeFeedbackDeleted)

	ErrNoFeedback         = NewNotFoundError("No feedbacks found for this company", ErrCodeNoFeedback)
	ErrReputationNotFound = NewNotFoundError("Reputation metrics not found for this company", ErrCodeReputationNotFound)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the ErrorType of err, treating foreign errors as internal.
func KindOf(err error) ErrorType {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
