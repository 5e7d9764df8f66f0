package company_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/company"
	"github.com/frahmantamala/reputation-management/internal/transport"
)

var _ = Describe("Company Handler", func() {
	var (
		repo   *mockCompanyRepository
		router *chi.Mux
	)

	// asUser stands in for the authentication middleware.
	asUser := func(userID string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := internal.ContextWithPrincipal(r.Context(), internal.Principal{UserID: userID})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}
	}

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockCompanyRepository()
		repo.users["owner-1"] = true
		repo.users["owner-2"] = true
		handler := company.NewHandler(transport.NewBaseHandler(slogger), company.NewService(repo, repo, slogger))

		router = chi.NewRouter()
		router.Get("/companies", handler.List)
		router.Get("/companies/{id}", handler.Get)
		router.Group(func(r chi.Router) {
			r.Use(asUser("owner-1"))
			r.Post("/companies", handler.Create)
			r.Get("/mine", handler.Mine)
			r.Put("/companies/{id}", handler.Update)
		})
		router.With(asUser("owner-2")).Put("/other/{id}", handler.Update)
	})

	createCompany := func() *company.Company {
		rec := do(http.MethodPost, "/companies", `{"cnpj":"11.222.333/0001-81","name":"Acme","category":"RETAIL"}`)
		ExpectWithOffset(1, rec.Code).To(Equal(http.StatusCreated))
		var resp company.CompanyResponse
		ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return resp.Company
	}

	It("should create a company for the caller", func() {
		c := createCompany()

		Expect(c.UserID).To(Equal("owner-1"))
		Expect(c.CNPJ).To(Equal("11222333000181"))
	})

	It("should answer an invalid cnpj with 400", func() {
		rec := do(http.MethodPost, "/companies", `{"cnpj":"12345678000190","name":"Acme","category":"RETAIL"}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer a second company with 409", func() {
		createCompany()

		rec := do(http.MethodPost, "/companies", `{"cnpj":"12345678000195","name":"Acme 2","category":"RETAIL"}`)

		Expect(rec.Code).To(Equal(http.StatusConflict))
	})

	It("should return the caller's company", func() {
		created := createCompany()

		rec := do(http.MethodGet, "/mine", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(created.ID))
	})

	It("should return 404 for an unknown company", func() {
		rec := do(http.MethodGet, "/companies/missing", "")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should list with paging metadata", func() {
		createCompany()

		rec := do(http.MethodGet, "/companies?page=1&limit=5", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var result company.ListResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Companies).To(HaveLen(1))
		Expect(result.Meta.Limit).To(Equal(5))
	})

	It("should reject an unknown category filter", func() {
		rec := do(http.MethodGet, "/companies?category=MAGIC", "")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should let only the owner update", func() {
		created := createCompany()

		rec := do(http.MethodPut, "/companies/"+created.ID, `{"name":"Renamed"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Renamed"))

		rec = do(http.MethodPut, "/other/"+created.ID, `{"name":"Hijacked"}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("should require a principal", func() {
		handler := company.NewHandler(transport.NewBaseHandler(nil), company.NewService(repo, repo, slog.Default()))
		rec := httptest.NewRecorder()

		handler.Mine(rec, httptest.NewRequest(http.MethodGet, "/mine", nil))

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
