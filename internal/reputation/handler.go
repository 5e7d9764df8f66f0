package reputation

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

func (h *Handler) CompanyMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeMetrics(w, r, chi.URLParam(r, "companyId"))
}

func (h *Handler) CompanyHistory(w http.ResponseWriter, r *http.Request) {
	h.writeHistory(w, r, chi.URLParam(r, "companyId"))
}

func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.GetRankings(r.Context(), RankingsInput{
		Limit:    transport.QueryInt(r, "limit", DefaultRankingsLimit),
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var dto CalculateReputationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, err)
		return
	}

	metrics, err := h.Service.CalculateReputation(r.Context(), dto.ToInput())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CalculateResponse{
		Message: "Reputation calculated successfully",
		Metrics: metrics,
	})
}

func (h *Handler) AdminMetrics(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.requiredCompanyID(w, r)
	if !ok {
		return
	}
	h.writeMetrics(w, r, companyID)
}

func (h *Handler) AdminHistory(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.requiredCompanyID(w, r)
	if !ok {
		return
	}
	h.writeHistory(w, r, companyID)
}

func (h *Handler) requiredCompanyID(w http.ResponseWriter, r *http.Request) (string, bool) {
	companyID := r.URL.Query().Get("companyId")
	if companyID == "" {
		h.WriteError(w, internal.NewValidationFieldError("companyId", "companyId is required", internal.ErrCodeValidationFailed))
		return "", false
	}
	return companyID, true
}

func (h *Handler) writeMetrics(w http.ResponseWriter, r *http.Request, companyID string) {
	view, err := h.Service.GetReputationMetrics(r.Context(), companyID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MetricsResponse{Metrics: view})
}

func (h *Handler) writeHistory(w http.ResponseWriter, r *http.Request, companyID string) {
	view, err := h.Service.GetReputationHistory(r.Context(), HistoryInput{
		CompanyID: companyID,
		Limit:     transport.QueryInt(r, "limit", DefaultHistoryLimit),
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}
