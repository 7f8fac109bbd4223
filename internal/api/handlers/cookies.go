package handlers

import (
	"net/http"
	"time"

	"github.com/dom/videotube-backend/internal/api/middleware"
)

const refreshTokenCookie = "refreshToken"

func (h *UserHandler) authCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *UserHandler) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, h.authCookie(middleware.AccessTokenCookie, accessToken, h.auth.AccessTokenTTL()))
	http.SetCookie(w, h.authCookie(refreshTokenCookie, refreshToken, h.auth.RefreshTokenTTL()))
}

func (h *UserHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		c := h.authCookie(name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}
