package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameaccounts/internal/api/handler"
	"github.com/mcoot/gameaccounts/internal/api/middleware"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Identity  *identity.Service
	Sessions  *session.Manager
	Signer    *session.CookieSigner
	Providers handler.ProviderLister
	// TrustProxy takes the client address from X-Forwarded-For
	TrustProxy bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.Identity, cfg.Sessions, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.Identity, cfg.Sessions)
	friendHandler := handler.NewFriendHandler(cfg.Identity)
	providerHandler := handler.NewProviderHandler(cfg.Providers)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Sessions, cfg.Signer)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.RealIP(cfg.TrustProxy))
	api.Use(middleware.Logging(cfg.Logger))

	// Public routes
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/providers", providerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/accounts", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/sessions", sessionHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/accounts/by-address", accountHandler.ByAddress).Methods(http.MethodGet)

	// Protected routes. /accounts/me and /accounts/by-address are registered
	// before /accounts/{nickname}; both names are reserved as nicknames.
	me := api.PathPrefix("/accounts/me").Subrouter()
	me.Use(authMiddleware)
	me.HandleFunc("", accountHandler.GetMe).Methods(http.MethodGet)
	me.HandleFunc("", accountHandler.UpdateMe).Methods(http.MethodPatch)
	me.HandleFunc("", accountHandler.DeleteMe).Methods(http.MethodDelete)
	me.HandleFunc("/friends", friendHandler.List).Methods(http.MethodGet)
	me.HandleFunc("/friends", friendHandler.Add).Methods(http.MethodPost)
	me.HandleFunc("/friends/{nickname}/accept", friendHandler.Accept).Methods(http.MethodPost)
	me.HandleFunc("/friends/{nickname}", friendHandler.Remove).Methods(http.MethodDelete)
	me.HandleFunc("/results", accountHandler.RecordResult).Methods(http.MethodPost)

	current := api.PathPrefix("/sessions/current").Subrouter()
	current.Use(authMiddleware)
	current.HandleFunc("", sessionHandler.Logout).Methods(http.MethodDelete)

	accounts := api.PathPrefix("/accounts").Subrouter()
	accounts.Use(authMiddleware)
	accounts.HandleFunc("", accountHandler.List).Methods(http.MethodGet)
	accounts.HandleFunc("/{nickname}", accountHandler.Get).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
