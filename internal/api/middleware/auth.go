package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/gameaccounts/internal/api/apierr"
	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/services/session"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
	sessionContextKey contextKey = "session"
)

// Auth creates authentication middleware. The handle comes from a bearer
// token or from the signed session cookie.
func Auth(sessions *session.Manager, signer *session.CookieSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle := session.HandleFromRequest(r, signer)
			if handle == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			sess, account, err := sessions.Validate(r.Context(), handle)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess, account)))
		})
	}
}

// WithSession stores a validated session and its account in ctx
func WithSession(ctx context.Context, sess *session.Session, account *model.Account) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey, sess)
	return context.WithValue(ctx, accountContextKey, account)
}

// GetAccount returns the authenticated account from the request context
func GetAccount(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// MustGetAccount returns the authenticated account or panics
func MustGetAccount(ctx context.Context) *model.Account {
	account := GetAccount(ctx)
	if account == nil {
		panic("no account in context - auth middleware not applied?")
	}
	return account
}
