package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/services/session"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
	sessionContextKey contextKey = "session"
)

// GetAccount retrieves the authenticated account from the request context
// Returns nil if no account is authenticated
func GetAccount(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// GetSession retrieves the validated session from the request context
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// Auth returns middleware that requires a session cookie
// Redirects to loginURL if not authenticated
func Auth(sessions *session.Manager, signer *session.CookieSigner, loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, ok := authenticate(r, sessions, signer)
			if !ok {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns middleware that attempts authentication but doesn't require it
func OptionalAuth(sessions *session.Manager, signer *session.CookieSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ctx, ok := authenticate(r, sessions, signer); ok {
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, sessions *session.Manager, signer *session.CookieSigner) (context.Context, bool) {
	handle := session.HandleFromRequest(r, signer)
	if handle == "" {
		return nil, false
	}

	sess, account, err := sessions.Validate(r.Context(), handle)
	if err != nil {
		return nil, false
	}

	ctx := context.WithValue(r.Context(), sessionContextKey, sess)
	return context.WithValue(ctx, accountContextKey, account), true
}
