package auth

import (
	"net/http"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/transport"
	"github.com/frahmantamala/reputation-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Tokens  TokenServiceAPI
	Cookies *CookieManager
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, tokens TokenServiceAPI, cookies *CookieManager) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Tokens:      tokens,
		Cookies:     cookies,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, err)
		return
	}

	user, err := h.Service.Register(r.Context(), dto.ToInput(), transport.ClientMeta(r))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	tokens, err := h.Service.GenerateTokens(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Cookies.SetTokens(w, tokens)
	h.WriteJSON(w, http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    user.Public(),
		Tokens:  &tokens,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		// malformed bodies get the same answer as bad credentials
		h.WriteError(w, internal.ErrInvalidCredentials)
		return
	}

	user, err := h.Service.Login(r.Context(), LoginInput(dto), transport.ClientMeta(r))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	tokens, err := h.Service.GenerateTokens(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Cookies.SetTokens(w, tokens)
	h.WriteJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    user.Public(),
		Tokens:  &tokens,
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := cookieValue(r, RefreshTokenCookie)
	if refreshToken == "" && r.ContentLength != 0 {
		var dto RefreshTokenDTO
		if err := h.DecodeJSON(r, &dto); err == nil {
			refreshToken = dto.RefreshToken
		}
	}
	if refreshToken == "" {
		h.WriteError(w, internal.ErrInvalidRefreshToken)
		return
	}

	tokens, err := h.Service.Refresh(r.Context(), refreshToken, transport.ClientMeta(r))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Cookies.SetTokens(w, tokens)
	h.WriteJSON(w, http.StatusOK, AuthResponse{
		Message: "Tokens refreshed successfully",
		Tokens:  &tokens,
	})
}

// Logout identifies the caller by the refresh cookie, falling back to the access
// token. Cookies are cleared whether or not identification succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.identify(r)
	h.Cookies.Clear(w)

	if userID == "" {
		h.WriteError(w, internal.ErrTokenInvalid)
		return
	}

	if err := h.Service.Logout(r.Context(), userID, transport.ClientMeta(r)); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logout successful",
		"ok":      true,
	})
}

func (h *Handler) identify(r *http.Request) string {
	if raw := cookieValue(r, RefreshTokenCookie); raw != "" {
		if claims, err := h.Tokens.VerifyRefreshToken(raw); err == nil {
			return claims.Subject
		}
	}

	access := cookieValue(r, AccessTokenCookie)
	if access == "" {
		access = h.ExtractTokenFromHeader(r)
	}
	if access == "" {
		return ""
	}
	claims, err := h.Tokens.VerifyAccessToken(access)
	if err != nil {
		logger.From(r.Context()).Debug("logout with invalid access token", "error", err)
		return ""
	}
	return claims.Subject
}
