package reputation_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/reputation-management/internal/company"
	"github.com/frahmantamala/reputation-management/internal/reputation"
	"github.com/frahmantamala/reputation-management/internal/transport"
)

var _ = Describe("Reputation Handler", func() {
	var (
		repo   *mockReputationRepository
		stats  *mockStatsSource
		router *chi.Mux
	)

	BeforeEach(func() {
		repo = newMockReputationRepository()
		stats = &mockStatsSource{stats: map[string]*reputation.Stats{
			"acme": reputation.Aggregate("acme", []int{5, 4}),
		}}
		companies := mockCompanyLookup{
			"acme": {ID: "acme", Name: "Acme", Category: company.CategoryRetail, Status: company.StatusActive},
		}
		service := reputation.NewService(repo, stats, companies, testLogger())
		handler := reputation.NewHandler(transport.NewBaseHandler(testLogger()), service)

		router = chi.NewRouter()
		router.Get("/companies/{companyId}/reputation", handler.CompanyMetrics)
		router.Get("/companies/{companyId}/reputation/history", handler.CompanyHistory)
		router.Get("/rankings", handler.Rankings)
		router.Post("/admin/reputation/calculate", handler.Calculate)
		router.Get("/admin/reputation/metrics", handler.AdminMetrics)
		router.Get("/admin/reputation/history", handler.AdminHistory)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("should return company metrics with percentages", func() {
		rec := do(http.MethodGet, "/companies/acme/reputation", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp reputation.MetricsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Metrics.AverageRating).To(Equal(4.5))
		Expect(resp.Metrics.Distribution.Percentages.Rating4).To(BeNumerically("~", 50, 0.001))
	})

	It("should return 404 for unknown companies", func() {
		rec := do(http.MethodGet, "/companies/ghost/reputation", "")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring("COMPANY_NOT_FOUND"))
	})

	It("should calculate and save history by default", func() {
		rec := do(http.MethodPost, "/admin/reputation/calculate", `{"companyId":"acme"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Reputation calculated successfully"))

		stats.set("acme", reputation.Aggregate("acme", []int{5, 4, 1}))
		rec = do(http.MethodPost, "/admin/reputation/calculate", `{"companyId":"acme"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(repo.history["acme"]).To(HaveLen(1))

		stats.set("acme", reputation.Aggregate("acme", []int{5, 5}))
		rec = do(http.MethodPost, "/admin/reputation/calculate", `{"companyId":"acme","saveHistory":false}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(repo.history["acme"]).To(HaveLen(1))
		Expect(repo.metrics["acme"].AverageRating).To(Equal(5.0))
	})

	It("should validate calculation requests", func() {
		Expect(do(http.MethodPost, "/admin/reputation/calculate", `{}`).Code).To(Equal(http.StatusBadRequest))
	})

	It("should serve history with a trend", func() {
		Expect(do(http.MethodGet, "/companies/acme/reputation/history", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodPost, "/admin/reputation/calculate", `{"companyId":"acme"}`).Code).To(Equal(http.StatusOK))

		rec := do(http.MethodGet, "/companies/acme/reputation/history?limit=5", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var view reputation.HistoryView
		Expect(json.Unmarshal(rec.Body.Bytes(), &view)).To(Succeed())
		Expect(view.Trend).To(Equal(reputation.TrendStable))
		Expect(repo.lastLimit).To(Equal(5))
	})

	It("should require companyId on admin reads", func() {
		Expect(do(http.MethodGet, "/admin/reputation/metrics", "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/admin/reputation/history", "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/admin/reputation/metrics?companyId=acme", "").Code).To(Equal(http.StatusOK))
	})

	It("should serve rankings", func() {
		repo.ordered = []*reputation.Metrics{{CompanyID: "acme", AverageRating: 4.5, TotalFeedbacks: 2}}

		rec := do(http.MethodGet, "/rankings?limit=10", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var view reputation.RankingsView
		Expect(json.Unmarshal(rec.Body.Bytes(), &view)).To(Succeed())
		Expect(view.Rankings).To(HaveLen(1))
		Expect(view.Rankings[0].Position).To(Equal(1))
		Expect(view.Meta.Limit).To(Equal(10))

		Expect(do(http.MethodGet, "/rankings?category=MAGIC", "").Code).To(Equal(http.StatusBadRequest))
	})
})
