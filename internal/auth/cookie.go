package auth

import (
	"net/http"
	"time"

	"github.com/frahmantamala/reputation-management/internal"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieManager writes the token pair as httpOnly cookies scoped to "/".
type CookieManager struct {
	secure     bool
	sameSite   http.SameSite
	domain     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCookieManager(cfg internal.CookieConfig, accessTTL, refreshTTL time.Duration) (*CookieManager, error) {
	sameSite, err := cfg.SameSiteMode()
	if err != nil {
		return nil, err
	}
	return &CookieManager{
		secure:     cfg.Secure,
		sameSite:   sameSite,
		domain:     cfg.Domain,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (c *CookieManager) SetTokens(w http.ResponseWriter, tokens Tokens) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, tokens.AccessToken, int(c.accessTTL.Seconds())))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, tokens.RefreshToken, int(c.refreshTTL.Seconds())))
}

func (c *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, "", -1))
}

func (c *CookieManager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	}
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
