package handler

import (
	"net/http"
	"time"

	"github.com/mcoot/gameaccounts/internal/services/session"
)

const (
	// flowCookieName binds a pending authorization to one browser
	flowCookieName = "oauth_flow"
	flowCookieTTL  = 10 * time.Minute
	flowBytes      = 32
)

// CookieOptions are shared by every cookie the browser routes set
type CookieOptions struct {
	// Secure marks cookies HTTPS-only
	Secure bool
}

func (o CookieOptions) setSession(w http.ResponseWriter, value string, expiresAt time.Time, now time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(expiresAt.Sub(now).Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) clearSession(w http.ResponseWriter) {
	o.clear(w, session.CookieName, "/")
}

// setFlow scopes the binding cookie to /auth. It must be Lax so the
// provider's top-level redirect back to the callback carries it.
func (o CookieOptions) setFlow(w http.ResponseWriter, binding string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flowCookieName,
		Value:    binding,
		Path:     "/auth",
		MaxAge:   int(flowCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) clearFlow(w http.ResponseWriter) {
	o.clear(w, flowCookieName, "/auth")
}

func (o CookieOptions) clear(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func flowBinding(r *http.Request) string {
	cookie, err := r.Cookie(flowCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
