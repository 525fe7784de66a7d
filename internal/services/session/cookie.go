package session

import (
	"net/http"
	"strings"
)

// CookieName is the browser cookie carrying the signed session handle
const CookieName = "session"

// HandleFromRequest returns the session handle presented by a request: a
// bearer token is taken as the raw handle, the session cookie must carry a
// value signed by signer. Returns "" when neither is usable.
func HandleFromRequest(r *http.Request, signer *CookieSigner) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" || signer == nil {
		return ""
	}
	handle, err := signer.Parse(cookie.Value)
	if err != nil {
		return ""
	}
	return handle
}
