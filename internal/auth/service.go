package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/company"
)

type RegisterInput struct {
	Email       string
	Password    string
	Name        *string
	UserType    UserType
	CNPJ        string
	CompanyName string
	Category    string
}

type LoginInput struct {
	Email    string
	Password string
}

// Service is the main auth service with dependencies
type Service struct {
	repo   RepositoryAPI
	tokens TokenServiceAPI
	hasher PasswordHasher
	audit  AuditSink
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenServiceAPI, hasher PasswordHasher, audit AuditSink, logger *slog.Logger) *Service {
	if audit == nil {
		audit = NopAuditSink{}
	}
	return &Service{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
		audit:  audit,
		logger: logger,
	}
}

// Register creates a consumer or company-owner account. The user row and its
// company or consumer profile are committed together or not at all.
func (s *Service) Register(ctx context.Context, in RegisterInput, meta internal.RequestMeta) (user *User, err error) {
	var reason string
	userType := in.UserType
	if userType == "" {
		userType = UserTypeConsumer
	}

	defer func() {
		event := AuditEvent{
			Type:      AuditRegister,
			IP:        meta.IP,
			UserAgent: meta.UserAgent,
			Success:   err == nil,
			Metadata: map[string]interface{}{
				"email":    strings.ToLower(strings.TrimSpace(in.Email)),
				"userType": string(userType),
			},
		}
		if user != nil {
			event.UserID = user.ID
		}
		if err != nil {
			event.Error = auditReason(err, reason)
		}
		s.audit.Log(ctx, event)
	}()

	if userType != UserTypeConsumer && userType != UserTypeCompany {
		return nil, internal.NewValidationFieldError("userType", "userType must be consumer or company", internal.ErrCodeInvalidUserType)
	}

	email, err := NewEmail(in.Email)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, email.String())
	if err != nil {
		return nil, s.unexpected("failed to look up email", err)
	}
	if existing != nil {
		reason = "Email already exists"
		return nil, internal.NewConflictError("Email already registered", internal.ErrCodeEmailAlreadyRegistered)
	}

	var profile *CompanyProfile
	if userType == UserTypeCompany {
		profile, err = s.validateCompany(ctx, in)
		if err != nil {
			return nil, err
		}
	}

	password, err := NewPassword(in.Password)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password.String())
	if err != nil {
		return nil, s.unexpected("failed to hash password", err)
	}

	user, err = s.repo.CreateAccount(ctx, NewAccount{
		User: &User{
			Email:        email.String(),
			PasswordHash: hash,
			Name:         trimmedOrNil(in.Name),
			Roles:        userType.DefaultRoles(),
			Status:       StatusActive,
		},
		Company: profile,
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, s.unexpected("failed to create account", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "user_type", userType)
	return user, nil
}

func (s *Service) validateCompany(ctx context.Context, in RegisterInput) (*CompanyProfile, error) {
	name := strings.TrimSpace(in.CompanyName)
	if strings.TrimSpace(in.CNPJ) == "" || name == "" || in.Category == "" {
		return nil, internal.NewValidationError("CNPJ, company name and category are required for company registration", internal.ErrCodeValidationFailed)
	}

	if !company.IsValidCategory(in.Category) {
		return nil, internal.NewValidationFieldError("category", "category is not supported", internal.ErrCodeInvalidCategory)
	}

	cnpj, err := company.NewCNPJ(in.CNPJ)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.CNPJExists(ctx, cnpj.String())
	if err != nil {
		return nil, s.unexpected("failed to look up cnpj", err)
	}
	if taken {
		return nil, internal.ErrCNPJAlreadyRegistered
	}

	return &CompanyProfile{
		CNPJ:     cnpj.String(),
		Name:     name,
		Category: in.Category,
	}, nil
}

// Login verifies credentials. Every rejection returns the same error so callers
// cannot tell an unknown email from a wrong password or a disabled account.
func (s *Service) Login(ctx context.Context, in LoginInput, meta internal.RequestMeta) (*User, error) {
	event := AuditEvent{
		Type:      AuditLogin,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  map[string]interface{}{"email": strings.ToLower(strings.TrimSpace(in.Email))},
	}

	fail := func(reason string, err error) (*User, error) {
		event.Error = reason
		s.audit.Log(ctx, event)
		return nil, err
	}

	email, err := NewEmail(in.Email)
	if err != nil {
		return fail("Invalid credentials", internal.ErrInvalidCredentials)
	}

	user, err := s.repo.FindByEmail(ctx, email.String())
	if err != nil {
		return fail(err.Error(), s.unexpected("failed to look up user", err))
	}
	if user == nil {
		return fail("Invalid credentials", internal.ErrInvalidCredentials)
	}

	event.UserID = user.ID
	if !user.IsActive() {
		return fail("User is disabled", internal.ErrInvalidCredentials)
	}

	if !s.hasher.Compare(in.Password, user.PasswordHash) {
		return fail("Invalid credentials", internal.ErrInvalidCredentials)
	}

	event.Success = true
	s.audit.Log(ctx, event)
	return user, nil
}

// GenerateTokens signs a new pair and stores the refresh hash, replacing any previous one.
func (s *Service) GenerateTokens(ctx context.Context, user *User) (Tokens, error) {
	payload := TokenPayload{
		Subject: user.ID,
		Email:   user.Email,
		Roles:   user.Roles,
	}

	accessToken, err := s.tokens.GenerateAccessToken(payload)
	if err != nil {
		return Tokens{}, s.unexpected("failed to sign access token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(payload)
	if err != nil {
		return Tokens{}, s.unexpected("failed to sign refresh token", err)
	}

	hash := HashRefreshToken(refreshToken)
	if err := s.repo.UpdateRefreshTokenHash(ctx, user.ID, &hash); err != nil {
		return Tokens{}, s.unexpected("failed to store refresh token", err)
	}

	return Tokens{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresIn:  int64(s.tokens.AccessTTL().Seconds()),
		RefreshExpiresIn: int64(s.tokens.RefreshTTL().Seconds()),
	}, nil
}

// Refresh rotates the token pair. Only the most recently issued refresh token
// is accepted; all failures surface as ErrInvalidRefreshToken.
func (s *Service) Refresh(ctx context.Context, refreshToken string, meta internal.RequestMeta) (Tokens, error) {
	event := AuditEvent{
		Type:      AuditRefresh,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	fail := func(reason string) (Tokens, error) {
		event.Error = reason
		s.audit.Log(ctx, event)
		return Tokens{}, internal.ErrInvalidRefreshToken
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return fail(auditReason(err, ""))
	}
	event.UserID = claims.Subject

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		s.logger.ErrorContext(ctx, "refresh: failed to load user", "user_id", claims.Subject, "error", err)
		return fail(err.Error())
	}
	if user == nil {
		return fail("User not found")
	}
	if !user.IsActive() {
		return fail("User is disabled")
	}
	if user.RefreshTokenHash == nil || *user.RefreshTokenHash != HashRefreshToken(refreshToken) {
		return fail("Refresh token revoked")
	}

	tokens, err := s.GenerateTokens(ctx, user)
	if err != nil {
		return fail(auditReason(err, ""))
	}

	event.Success = true
	s.audit.Log(ctx, event)
	return tokens, nil
}

// Logout revokes the stored refresh token. Calling it twice is harmless.
func (s *Service) Logout(ctx context.Context, userID string, meta internal.RequestMeta) error {
	event := AuditEvent{
		Type:      AuditLogout,
		UserID:    userID,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	if err := s.repo.UpdateRefreshTokenHash(ctx, userID, nil); err != nil {
		event.Error = err.Error()
		s.audit.Log(ctx, event)
		return s.unexpected("failed to revoke refresh token", err)
	}

	event.Success = true
	s.audit.Log(ctx, event)
	return nil
}

func (s *Service) unexpected(msg string, err error) error {
	s.logger.Error(msg, "error", err)
	return internal.NewInternalError(msg, err)
}

func auditReason(err error, reason string) string {
	if reason != "" {
		return reason
	}
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.Type == internal.ErrorTypeInternal && appErr.Cause != nil {
			return appErr.Cause.Error()
		}
		return appErr.GetDetailedMessage()
	}
	return err.Error()
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
