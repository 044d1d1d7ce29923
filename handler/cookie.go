package handler

import (
	"net/http"
	"time"

	"github.com/lordvidex/x/auth"
)

const (
	sessionCookieKey  = "tokenlink_session"
	defaultSessionTTL = 24 * time.Hour
)

func (h *Handler) newSessionCookie(token auth.Token) http.Cookie {
	return http.Cookie{
		Name:     sessionCookieKey,
		Value:    string(token),
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.SessionTTL),
		Secure:   h.cfg.SecureCookies, // enable development usage
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func deleteCookie(w http.ResponseWriter, c *http.Cookie) {
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	c.Path = "/"
	http.SetCookie(w, c)
}
