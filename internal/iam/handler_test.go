package iam_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/auth"
	"github.com/frahmantamala/reputation-management/internal/iam"
	"github.com/frahmantamala/reputation-management/internal/transport"
)

var _ = Describe("IAM Handler", func() {
	var (
		f      *fixture
		router *chi.Mux
	)

	BeforeEach(func() {
		f = newFixture()
		service := iam.NewService(f.store, iam.NewChecker(f.store, f.slogger), f.slogger)
		handler := iam.NewHandler(transport.NewBaseHandler(f.slogger), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id := r.Header.Get("X-Test-User"); id != "" {
					r = r.WithContext(internal.ContextWithPrincipal(r.Context(), internal.Principal{UserID: id}))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Post("/roles", handler.AssignRole)
		router.Delete("/roles/{userId}/{roleId}", handler.RemoveRole)
		router.Get("/roles", handler.ListRoles)
		router.Get("/permissions", handler.ListPermissions)
		router.Get("/permissions/user/{userId}", handler.UserPermissions)
		router.Post("/permissions/check", handler.CheckPermission)
		router.Get("/permissions/me", handler.MyPermissions)
	})

	do := func(method, path, user, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("should assign and remove roles", func() {
		roleID := f.roles[auth.RoleCompanyAdmin]

		rec := do(http.MethodPost, "/roles", "admin", `{"userId":"alice","roleId":"`+roleID+`"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring("Role assigned successfully"))

		rec = do(http.MethodPost, "/roles", "admin", `{"userId":"alice","roleId":"`+roleID+`"}`)
		Expect(rec.Code).To(Equal(http.StatusConflict))

		rec = do(http.MethodDelete, "/roles/alice/"+roleID, "admin", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = do(http.MethodDelete, "/roles/alice/"+roleID, "admin", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should validate assignment bodies", func() {
		rec := do(http.MethodPost, "/roles", "admin", `{"userId":"alice"}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer permission checks for the caller", func() {
		rec := do(http.MethodPost, "/permissions/check", "owner", `{"resource":"company","action":"update","companyId":"acme"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp iam.CheckPermissionResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Allowed).To(BeTrue())

		rec = do(http.MethodPost, "/permissions/check", "alice", `{"resource":"company","action":"update"}`)
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Allowed).To(BeFalse())
	})

	It("should require a principal for self-service endpoints", func() {
		Expect(do(http.MethodGet, "/permissions/me", "", "").Code).To(Equal(http.StatusUnauthorized))
		Expect(do(http.MethodPost, "/permissions/check", "", `{}`).Code).To(Equal(http.StatusUnauthorized))
	})

	It("should list the caller's permissions", func() {
		rec := do(http.MethodGet, "/permissions/me", "alice", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp iam.PermissionsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Permissions).To(Equal([]string{"feedback:create", "reputation:read"}))
	})

	It("should list another user's permissions", func() {
		Expect(do(http.MethodGet, "/permissions/user/owner", "admin", "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/permissions/user/ghost", "admin", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should list roles and permissions", func() {
		var roles iam.RolesResponse
		rec := do(http.MethodGet, "/roles", "admin", "")
		Expect(json.Unmarshal(rec.Body.Bytes(), &roles)).To(Succeed())
		Expect(roles.Roles).To(HaveLen(4))

		var catalog iam.PermissionCatalogResponse
		rec = do(http.MethodGet, "/permissions", "admin", "")
		Expect(json.Unmarshal(rec.Body.Bytes(), &catalog)).To(Succeed())
		Expect(catalog.Permissions).To(HaveLen(4))
	})
})
