package feedback_test

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
	"github.com/frahmantamala/reputation-management/internal/feedback"
	"github.com/frahmantamala/reputation-management/internal/transport"
)

var _ = Describe("Feedback Handler", func() {
	var router *chi.Mux

	BeforeEach(func() {
		repo := &mockFeedbackRepository{items: make(map[string]*feedback.Feedback)}
		consumers := &mockConsumerRepository{byUser: map[string]*feedback.Consumer{
			"alice": {ID: "consumer-alice", UserID: "alice"},
		}}
		companies := &mockCompanies{
			companies: map[string]*company.Company{"acme": {ID: "acme", Status: company.StatusActive}},
			users:     map[string]bool{"alice": true, "bob": true},
		}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := feedback.NewService(repo, consumers, companies, companies, &recordingPublisher{}, slogger)
		handler := feedback.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id := r.Header.Get("X-Test-User"); id != "" {
					r = r.WithContext(internal.ContextWithPrincipal(r.Context(), internal.Principal{UserID: id}))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Get("/feedbacks", handler.List)
		router.Post("/feedbacks", handler.Create)
		router.Get("/feedbacks/{id}", handler.Get)
		router.Put("/feedbacks/{id}", handler.Update)
		router.Delete("/feedbacks/{id}", handler.Delete)
		router.Post("/consumers", handler.CreateConsumer)
		router.Get("/consumers/{id}", handler.GetConsumer)
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

	create := func() string {
		rec := do(http.MethodPost, "/feedbacks", "alice", `{"companyId":"acme","rating":4,"comment":"Good"}`)
		ExpectWithOffset(1, rec.Code).To(Equal(http.StatusCreated))
		var resp feedback.FeedbackResponse
		ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return resp.Feedback.ID
	}

	It("should create, read and list feedback", func() {
		id := create()

		Expect(do(http.MethodGet, "/feedbacks/"+id, "", "").Code).To(Equal(http.StatusOK))

		rec := do(http.MethodGet, "/feedbacks?companyId=acme", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var list feedback.ListResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
		Expect(list.Feedbacks).To(HaveLen(1))
		Expect(list.Meta.Total).To(Equal(int64(1)))
	})

	It("should reject out-of-range ratings", func() {
		rec := do(http.MethodPost, "/feedbacks", "alice", `{"companyId":"acme","rating":7}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should let only the author edit or delete", func() {
		id := create()

		Expect(do(http.MethodPut, "/feedbacks/"+id, "bob", `{"rating":1}`).Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodPut, "/feedbacks/"+id, "alice", `{"rating":5}`).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodDelete, "/feedbacks/"+id, "bob", "").Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodDelete, "/feedbacks/"+id, "alice", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodPut, "/feedbacks/"+id, "alice", `{"rating":2}`).Code).To(Equal(http.StatusForbidden))
	})

	It("should return 404 for unknown feedback", func() {
		Expect(do(http.MethodGet, "/feedbacks/missing", "", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should require a principal to write", func() {
		Expect(do(http.MethodPost, "/feedbacks", "", `{"companyId":"acme","rating":4}`).Code).To(Equal(http.StatusUnauthorized))
		Expect(do(http.MethodPost, "/consumers", "", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("should create consumer profiles once", func() {
		rec := do(http.MethodPost, "/consumers", "bob", "")
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var resp feedback.ConsumerResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())

		Expect(do(http.MethodGet, "/consumers/"+resp.Consumer.ID, "bob", "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodPost, "/consumers", "bob", "").Code).To(Equal(http.StatusConflict))
	})
})
