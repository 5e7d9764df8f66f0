package feedback

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, internal.ErrAuthRequired)
		return
	}

	var dto CreateFeedbackDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	fb, err := h.Service.Create(r.Context(), CreateInput{
		UserID:    principal.UserID,
		CompanyID: dto.CompanyID,
		Rating:    dto.Rating,
		Comment:   dto.Comment,
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, FeedbackResponse{Feedback: fb})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	fb, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FeedbackResponse{Feedback: fb})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.Service.List(r.Context(), ListFilter{
		ConsumerID: q.Get("consumerId"),
		CompanyID:  q.Get("companyId"),
		Category:   q.Get("category"),
		Search:     q.Get("search"),
		Page:       transport.QueryInt(r, "page", 1),
		Limit:      transport.QueryInt(r, "limit", 10),
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, internal.ErrAuthRequired)
		return
	}

	var dto UpdateFeedbackDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	fb, err := h.Service.Update(r.Context(), UpdateInput{
		ID:      chi.URLParam(r, "id"),
		UserID:  principal.UserID,
		Rating:  dto.Rating,
		Comment: dto.Comment,
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FeedbackResponse{Feedback: fb})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, internal.ErrAuthRequired)
		return
	}

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"), principal.UserID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateConsumer(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, internal.ErrAuthRequired)
		return
	}

	consumer, err := h.Service.CreateConsumer(r.Context(), principal.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, ConsumerResponse{Consumer: consumer})
}

func (h *Handler) GetConsumer(w http.ResponseWriter, r *http.Request) {
	consumer, err := h.Service.GetConsumer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ConsumerResponse{Consumer: consumer})
}
