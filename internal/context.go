package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey      ctxKey = "userID"
	ContextPrincipalKey ctxKey = "principal"
)

// Principal is the authenticated caller extracted from a verified access token.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// ContextWithPrincipal stores the principal and its user id.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, ContextPrincipalKey, p)
	return ContextWithUserID(ctx, p.UserID)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(Principal)
	return p, ok
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

// RequestMeta describes the client behind a request, recorded in audit events.
type RequestMeta struct {
	IP        string
	UserAgent string
}
