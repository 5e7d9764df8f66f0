package rest

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/reputation-management/internal/auth"
	"github.com/frahmantamala/reputation-management/internal/company"
	"github.com/frahmantamala/reputation-management/internal/feedback"
	"github.com/frahmantamala/reputation-management/internal/iam"
	"github.com/frahmantamala/reputation-management/internal/reputation"
	"github.com/frahmantamala/reputation-management/internal/transport"
	"github.com/frahmantamala/reputation-management/internal/transport/middleware"
	"github.com/frahmantamala/reputation-management/internal/transport/swagger"
	"github.com/frahmantamala/reputation-management/internal/user"
)

// Dependencies carries everything the HTTP surface needs. Nil handlers skip
// their routes; a nil Limiter disables throttling.
type Dependencies struct {
	Auth       *auth.Handler
	IAM        *iam.Handler
	Company    *company.Handler
	Feedback   *feedback.Handler
	Reputation *reputation.Handler
	User       *user.Handler
	Health     *HealthHandler

	Resolver middleware.PrincipalResolver
	Checker  middleware.PermissionChecker
	Limiter  middleware.Limiter

	RateWindow     time.Duration
	AllowedOrigins string
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies, logger *slog.Logger) {
	router.Use(middleware.CORS(strings.Split(deps.AllowedOrigins, ",")))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI document at root (outside API prefix)
	router.Get("/openapi.json", swagger.DocumentHandler())
	router.Handle("/swagger/*", swagger.Handler())

	authenticate := middleware.Authenticate(deps.Resolver, auth.AccessTokenCookie)
	require := func(resource, action string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(deps.Checker, resource, action, nil)
	}
	requireScoped := func(resource, action string, scope middleware.ScopeFunc) func(http.Handler) http.Handler {
		return middleware.RequirePermission(deps.Checker, resource, action, scope)
	}
	throttle := func(scope string) func(http.Handler) http.Handler {
		if deps.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RateLimit(deps.Limiter, scope, deps.RateWindow, transport.ClientIP)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if deps.Health != nil {
			r.Get("/health", deps.Health.Check)
			r.Get("/ping", deps.Health.Ping)
		}

		if deps.Auth != nil {
			r.Route("/auth", func(ar chi.Router) {
				ar.With(throttle("register")).Post("/register", deps.Auth.Register)
				ar.With(throttle("login")).Post("/login", deps.Auth.Login)
				ar.Post("/refresh", deps.Auth.Refresh)
				ar.Post("/logout", deps.Auth.Logout)
			})
		}

		// Public reads
		if deps.Company != nil {
			r.Get("/companies", deps.Company.List)
			r.Get("/companies/{id}", deps.Company.Get)
		}
		if deps.Feedback != nil {
			r.Get("/feedbacks", deps.Feedback.List)
			r.Get("/feedbacks/{id}", deps.Feedback.Get)
		}
		if deps.Reputation != nil {
			r.Route("/reputation", func(rr chi.Router) {
				rr.Get("/companies/{companyId}", deps.Reputation.CompanyMetrics)
				rr.Get("/companies/{companyId}/history", deps.Reputation.CompanyHistory)
				rr.Get("/rankings", deps.Reputation.Rankings)
			})
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authenticate)

			if deps.User != nil {
				pr.Get("/users/me", deps.User.GetCurrentUser)
			}

			if deps.Company != nil {
				pr.Get("/companies/mine", deps.Company.Mine)
				pr.With(require("company", "create")).Post("/companies", deps.Company.Create)
				pr.With(requireScoped("company", "update", company.IDScope)).Put("/companies/{id}", deps.Company.Update)
			}

			if deps.Feedback != nil {
				pr.With(require("feedback", "create")).Post("/feedbacks", deps.Feedback.Create)
				pr.With(require("feedback", "update")).Put("/feedbacks/{id}", deps.Feedback.Update)
				pr.With(require("feedback", "delete")).Delete("/feedbacks/{id}", deps.Feedback.Delete)
				pr.Post("/consumers", deps.Feedback.CreateConsumer)
				pr.Get("/consumers/{id}", deps.Feedback.GetConsumer)
			}

			pr.Route("/admin", func(adm chi.Router) {
				if deps.Company != nil {
					adm.With(require("company", "read")).Get("/companies", deps.Company.List)
				}
				if deps.Feedback != nil {
					adm.With(require("feedback", "read")).Get("/feedbacks", deps.Feedback.List)
				}
				if deps.Reputation != nil {
					scope := middleware.QueryScope("companyId")
					adm.With(require("reputation", "calculate")).Post("/reputation/calculate", deps.Reputation.Calculate)
					adm.With(requireScoped("reputation", "read", scope)).Get("/reputation/metrics", deps.Reputation.AdminMetrics)
					adm.With(requireScoped("reputation", "read", scope)).Get("/reputation/history", deps.Reputation.AdminHistory)
				}
				if deps.IAM != nil {
					adm.Route("/iam", func(ir chi.Router) {
						ir.With(require("iam", "manage")).Post("/roles", deps.IAM.AssignRole)
						ir.With(require("iam", "manage")).Delete("/roles/{userId}/{roleId}", deps.IAM.RemoveRole)
						ir.With(require("iam", "read")).Get("/roles", deps.IAM.ListRoles)
						ir.With(require("iam", "read")).Get("/permissions", deps.IAM.ListPermissions)
						ir.With(require("iam", "read")).Get("/permissions/user/{userId}", deps.IAM.UserPermissions)

						// self-service, any authenticated caller
						ir.Post("/permissions/check", deps.IAM.CheckPermission)
						ir.Get("/permissions/me", deps.IAM.MyPermissions)
					})
				}
			})
		})
	})
}
