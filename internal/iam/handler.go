package iam

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

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var dto AssignRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, err)
		return
	}

	assignment, err := h.Service.AssignRole(r.Context(), dto.UserID, dto.RoleID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, AssignRoleResponse{
		Message:  "Role assigned successfully",
		UserRole: assignment,
	})
}

func (h *Handler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	roleID := chi.URLParam(r, "roleId")

	if err := h.Service.RemoveRole(r.Context(), userID, roleID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Role removed successfully", OK: true})
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.Service.ListPermissions(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionCatalogResponse{Permissions: permissions})
}

// CheckPermission answers for the authenticated caller.
func (h *Handler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, internal.ErrAuthRequired)
		return
	}

	var dto CheckPermissionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, err)
		return
	}

	allowed, err := h.Service.CheckPermission(r.Context(), CheckInput{
		UserID:    principal.UserID,
		Resource:  dto.Resource,
		Action:    dto.Action,
		CompanyID: dto.CompanyID,
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CheckPermissionResponse{Allowed: allowed})
}

func (h *Handler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, internal.ErrAuthRequired)
		return
	}
	h.writePermissions(w, r, principal.UserID)
}

func (h *Handler) UserPermissions(w http.ResponseWriter, r *http.Request) {
	h.writePermissions(w, r, chi.URLParam(r, "userId"))
}

func (h *Handler) writePermissions(w http.ResponseWriter, r *http.Request, userID string) {
	permissions, err := h.Service.ListUserPermissions(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionsResponse{Permissions: permissions})
}
