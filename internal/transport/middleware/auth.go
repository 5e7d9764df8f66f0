package middleware

import (
	"net/http"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/pkg/logger"
)

// PrincipalResolver turns a raw access token into the authenticated caller.
type PrincipalResolver interface {
	ResolvePrincipal(token string) (internal.Principal, error)
}

// Authenticate requires a valid access token, read from the named cookie or
// from an Authorization: Bearer header.
func Authenticate(resolver PrincipalResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := accessToken(r, cookieName)
			if token == "" {
				writeAppError(w, internal.ErrAuthRequired)
				return
			}

			principal, err := resolver.ResolvePrincipal(token)
			if err != nil {
				logger.From(r.Context()).Debug("access token rejected", "error", err)
				if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeUnauthorized {
					writeAppError(w, appErr)
					return
				}
				writeAppError(w, internal.ErrTokenInvalid)
				return
			}

			ctx := internal.ContextWithPrincipal(r.Context(), principal)
			ctx = logger.With(ctx, "userID", principal.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && (authHeader[:7] == "Bearer " || authHeader[:7] == "bearer ") {
		return authHeader[7:]
	}
	return ""
}
