package company

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

	var dto CreateCompanyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	company, err := h.Service.Create(r.Context(), CreateInput{
		UserID:   principal.UserID,
		CNPJ:     dto.CNPJ,
		Name:     dto.Name,
		Category: dto.Category,
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, CompanyResponse{Company: company})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CompanyResponse{Company: company})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.Service.List(r.Context(), ListFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     transport.QueryInt(r, "page", 1),
		Limit:    transport.QueryInt(r, "limit", 10),
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

	var dto UpdateCompanyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	company, err := h.Service.Update(r.Context(), UpdateInput{
		ID:     chi.URLParam(r, "id"),
		UserID: principal.UserID,
		Name:   dto.Name,
		Status: dto.Status,
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CompanyResponse{Company: company})
}

// Mine returns the company owned by the caller.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, internal.ErrAuthRequired)
		return
	}
	company, err := h.Service.GetByUserID(r.Context(), principal.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CompanyResponse{Company: company})
}

// IDScope scopes a permission check to the {id} route parameter.
func IDScope(r *http.Request) string {
	return chi.URLParam(r, "id")
}
