package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/frahmantamala/reputation-management/internal"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPayload is the identity embedded in both tokens of a pair.
type TokenPayload struct {
	Subject string
	Email   string
	Roles   []string
}

// Claims represents JWT token claims
type Claims struct {
	Email string    `json:"email"`
	Roles []string  `json:"roles"`
	Type  TokenType `json:"type"`
	jwt.RegisteredClaims
}

type Tokens struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresIn  int64  `json:"access_expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type TokenServiceAPI interface {
	GenerateAccessToken(payload TokenPayload) (string, error)
	GenerateRefreshToken(payload TokenPayload) (string, error)
	VerifyAccessToken(token string) (*Claims, error)
	VerifyRefreshToken(token string) (*Claims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// TokenService signs access and refresh tokens with independent HS256 secrets.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           now,
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) GenerateAccessToken(payload TokenPayload) (string, error) {
	return s.sign(payload, TokenTypeAccess, s.accessSecret, s.accessTTL)
}

func (s *TokenService) GenerateRefreshToken(payload TokenPayload) (string, error) {
	return s.sign(payload, TokenTypeRefresh, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) VerifyAccessToken(token string) (*Claims, error) {
	return s.verify(token, TokenTypeAccess, s.accessSecret)
}

func (s *TokenService) VerifyRefreshToken(token string) (*Claims, error) {
	return s.verify(token, TokenTypeRefresh, s.refreshSecret)
}

// ResolvePrincipal verifies an access token for the HTTP auth middleware.
func (s *TokenService) ResolvePrincipal(token string) (internal.Principal, error) {
	claims, err := s.VerifyAccessToken(token)
	if err != nil {
		return internal.Principal{}, err
	}
	return internal.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, nil
}

func (s *TokenService) sign(payload TokenPayload, typ TokenType, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		Email: payload.Email,
		Roles: payload.Roles,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   payload.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *TokenService) verify(tokenString string, expected TokenType, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired.WithCause(err)
		}
		return nil, internal.ErrTokenInvalid.WithCause(err)
	}

	if claims.Type != expected {
		return nil, internal.ErrInvalidTokenType
	}
	if claims.Subject == "" {
		return nil, internal.ErrTokenInvalid
	}
	return claims, nil
}

// HashRefreshToken is the only form in which a refresh token is persisted.
// SHA-256 rather than bcrypt: signed JWTs exceed bcrypt's 72 byte input limit.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
