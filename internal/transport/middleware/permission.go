package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/pkg/logger"
)

// PermissionChecker answers whether a user may perform action on resource,
// optionally restricted to one company.
type PermissionChecker interface {
	Allowed(ctx context.Context, userID, resource, action, companyID string) (bool, error)
}

// ScopeFunc extracts the company a request targets; empty means unscoped.
type ScopeFunc func(r *http.Request) string

// RequirePermission must run after Authenticate.
func RequirePermission(checker PermissionChecker, resource, action string, scope ScopeFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrAuthRequired)
				return
			}

			companyID := ""
			if scope != nil {
				companyID = scope(r)
			}

			allowed, err := checker.Allowed(r.Context(), principal.UserID, resource, action, companyID)
			if err != nil {
				logger.From(r.Context()).Error("permission check failed",
					"resource", resource,
					"action", action,
					"error", err)
				writeAppError(w, internal.NewInternalError("Internal server error", nil))
				return
			}

			if !allowed {
				logger.From(r.Context()).Warn("access denied",
					"user_id", principal.UserID,
					"resource", resource,
					"action", action,
					"company_id", companyID)
				writeAppError(w, internal.ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// QueryScope reads the company id from a query parameter.
func QueryScope(key string) ScopeFunc {
	return func(r *http.Request) string {
		return r.URL.Query().Get(key)
	}
}
