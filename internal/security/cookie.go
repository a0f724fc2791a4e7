package security

import (
	"net/http"
	"time"
)

const sessionCookieName = "session_token"

// CookieManager writes and clears the session cookie with the configured
// security attributes.
type CookieManager struct {
	Secure bool
}

func NewCookieManager(secure bool) *CookieManager {
	return &CookieManager{Secure: secure}
}

func (c *CookieManager) SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func (c *CookieManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// GetCookie returns a cookie value or the empty string.
func GetCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SessionCookie reads the session token cookie.
func SessionCookie(r *http.Request) string {
	return GetCookie(r, sessionCookieName)
}
