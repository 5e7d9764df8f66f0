package auth

import (
	"regexp"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/reputation-management/internal"
)

const (
	MinPasswordLength = 8
	// bcrypt silently ignores input beyond 72 bytes
	MaxPasswordBytes = 72

	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a trimmed, lower-cased address of the form local@domain.tld.
type Email string

func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", internal.NewValidationFieldError("email", "email is required", internal.ErrCodeEmailRequired)
	}
	if !emailPattern.MatchString(normalized) {
		return "", internal.NewValidationFieldError("email", "email must be a valid address", internal.ErrCodeInvalidEmail)
	}
	return Email(normalized), nil
}

func (e Email) String() string { return string(e) }

type Password string

func NewPassword(raw string) (Password, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", internal.NewValidationFieldError("password", "password is required", internal.ErrCodePasswordRequired)
	}
	if len([]rune(trimmed)) < MinPasswordLength {
		return "", internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeInvalidPassword)
	}
	if len(trimmed) > MaxPasswordBytes {
		return "", internal.NewValidationFieldError("password", "password must not exceed 72 bytes", internal.ErrCodeInvalidPassword)
	}
	return Password(trimmed), nil
}

func (p Password) String() string { return string(p) }

// PasswordHasher is the one-way function protecting stored passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

func NewPasswordHasher(algorithm string, bcryptCost int) PasswordHasher {
	if algorithm == HasherArgon2id {
		return &Argon2Hasher{Params: argon2id.DefaultParams}
	}
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: bcryptCost}
}

type BcryptHasher struct {
	Cost int
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(plain)), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(plain, hash string) bool {
	return comparePassword(plain, hash)
}

type Argon2Hasher struct {
	Params *argon2id.Params
}

func (h *Argon2Hasher) Hash(plain string) (string, error) {
	return argon2id.CreateHash(strings.TrimSpace(plain), h.Params)
}

func (h *Argon2Hasher) Compare(plain, hash string) bool {
	return comparePassword(plain, hash)
}

// comparePassword accepts hashes produced by either hasher, so switching the
// configured algorithm does not lock out existing accounts.
func comparePassword(plain, hash string) bool {
	candidate := strings.TrimSpace(plain)
	if strings.HasPrefix(hash, "$argon2id$") {
		match, err := argon2id.ComparePasswordAndHash(candidate, hash)
		return err == nil && match
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
