package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameaccounts/internal/dependencies/clock"
	"github.com/mcoot/gameaccounts/internal/dependencies/random"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/oauth"
	"github.com/mcoot/gameaccounts/internal/services/session"
	"github.com/mcoot/gameaccounts/internal/web/handler"
	"github.com/mcoot/gameaccounts/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger   *slog.Logger
	Identity *identity.Service
	Sessions *session.Manager
	Signer   *session.CookieSigner
	Broker   *oauth.Broker
	Clock    clock.Clock
	Random   random.Random

	// DashboardURL is where successful sign-ins land
	DashboardURL string
	// LoginURL receives failed sign-ins with ?error=<flag>
	LoginURL string

	SecureCookies bool
	TrustProxy    bool
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	if cfg.DashboardURL == "" {
		cfg.DashboardURL = "/dashboard"
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = "/login"
	}

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Sessions, cfg.Signer, cfg.LoginURL)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.Sessions, cfg.Signer)

	// Apply global middleware to all routes
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RealIP(cfg.TrustProxy))
	r.Use(middleware.Logging(cfg.Logger))

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.Identity, cfg.Sessions, cfg.Signer, cfg.Broker,
		cfg.Clock, cfg.Random, cfg.Logger, handler.AuthConfig{
			DashboardURL: cfg.DashboardURL,
			LoginURL:     cfg.LoginURL,
			Cookies:      handler.CookieOptions{Secure: cfg.SecureCookies},
		})
	pageHandler := handler.NewPageHandler(cfg.Broker, cfg.Identity, cfg.Logger, cfg.DashboardURL)

	// Auth actions (no auth required). Fixed paths are registered before
	// /auth/{provider} so that "logout" never resolves as a provider.
	authRoutes := r.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	authRoutes.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	authRoutes.HandleFunc("/{provider}", authHandler.OAuthStart).Methods(http.MethodGet)
	authRoutes.HandleFunc("/{provider}/callback", authHandler.OAuthCallback).Methods(http.MethodGet)

	// Public routes (optional auth)
	public := r.NewRoute().Subrouter()
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/api/user", authHandler.CurrentUser).Methods(http.MethodGet)
	public.HandleFunc("/login", pageHandler.Login).Methods(http.MethodGet)
	public.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, cfg.DashboardURL, http.StatusSeeOther)
	}).Methods(http.MethodGet)

	// Protected routes (require auth)
	protected := r.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/dashboard", pageHandler.Dashboard).Methods(http.MethodGet)

	return r
}
