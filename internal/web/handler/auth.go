package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameaccounts/internal/api/response"
	"github.com/mcoot/gameaccounts/internal/dependencies/clock"
	"github.com/mcoot/gameaccounts/internal/dependencies/random"
	rootmw "github.com/mcoot/gameaccounts/internal/middleware"
	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/oauth"
	"github.com/mcoot/gameaccounts/internal/services/session"
	"github.com/mcoot/gameaccounts/internal/storage"
	"github.com/mcoot/gameaccounts/internal/web/middleware"
)

// Error flags appended to the login URL. They never carry detail.
const (
	FlagOAuthFailed        = "oauth_failed"
	FlagInvalidCredentials = "invalid_credentials"
	FlagNicknameTaken      = "nickname_taken"
	FlagAddressTaken       = "address_taken"
	FlagInvalidInput       = "invalid_input"
	FlagUnavailable        = "unavailable"
	FlagFailed             = "failed"
)

// AuthHandler handles the browser sign-in flows
type AuthHandler struct {
	identity *identity.Service
	sessions *session.Manager
	signer   *session.CookieSigner
	broker   *oauth.Broker
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	cookies      CookieOptions
	dashboardURL string
	loginURL     string
}

// AuthConfig holds the redirect targets of the browser flows
type AuthConfig struct {
	DashboardURL string
	LoginURL     string
	Cookies      CookieOptions
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(identity *identity.Service, sessions *session.Manager, signer *session.CookieSigner, broker *oauth.Broker,
	clock clock.Clock, random random.Random, logger *slog.Logger, cfg AuthConfig) *AuthHandler {
	return &AuthHandler{
		identity:     identity,
		sessions:     sessions,
		signer:       signer,
		broker:       broker,
		clock:        clock,
		random:       random,
		logger:       logger,
		cookies:      cfg.Cookies,
		dashboardURL: cfg.DashboardURL,
		loginURL:     cfg.LoginURL,
	}
}

// OAuthStart handles GET /auth/{provider}
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	binding, err := h.random.Token(flowBytes)
	if err != nil {
		h.logger.Error("generate flow binding", slog.String("error", err.Error()))
		h.fail(w, r, FlagOAuthFailed, http.StatusFound)
		return
	}

	authURL, err := h.broker.Initiate(binding, mux.Vars(r)["provider"])
	if err != nil {
		if errors.Is(err, oauth.ErrUnknownProvider) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("initiate oauth", slog.String("error", err.Error()))
		h.fail(w, r, FlagOAuthFailed, http.StatusFound)
		return
	}

	h.cookies.setFlow(w, binding)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback handles GET /auth/{provider}/callback
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	query := r.URL.Query()
	binding := flowBinding(r)
	h.cookies.clearFlow(w)

	// The provider reports a denied consent as ?error=...
	if providerErr := query.Get("error"); providerErr != "" {
		h.logger.Info("oauth authorization declined",
			slog.String("provider", provider),
			slog.String("reason", providerErr),
		)
		h.fail(w, r, FlagOAuthFailed, http.StatusFound)
		return
	}

	result, err := h.broker.Callback(r.Context(), binding, provider, query.Get("code"), query.Get("state"))
	if err != nil {
		h.logger.Warn("oauth callback failed",
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
		h.fail(w, r, FlagOAuthFailed, http.StatusFound)
		return
	}

	if err := h.startSession(w, result.Session); err != nil {
		h.logger.Error("sign session cookie", slog.String("error", err.Error()))
		h.fail(w, r, FlagOAuthFailed, http.StatusFound)
		return
	}
	http.Redirect(w, r, h.dashboardURL, http.StatusFound)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, FlagInvalidInput, http.StatusSeeOther)
		return
	}

	account, err := h.identity.ResolveDirect(r.Context(), identity.Registration{
		Nickname: strings.TrimSpace(r.FormValue("nickname")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		IP:       rootmw.ClientIP(r.Context()),
	})
	if err != nil {
		h.fail(w, r, errorFlag(err), http.StatusSeeOther)
		return
	}

	h.login(w, r, account)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, FlagInvalidInput, http.StatusSeeOther)
		return
	}

	nickname := strings.TrimSpace(r.FormValue("nickname"))
	password := r.FormValue("password")
	if nickname == "" || password == "" {
		h.fail(w, r, FlagInvalidCredentials, http.StatusSeeOther)
		return
	}

	account, err := h.identity.Authenticate(r.Context(), nickname, password)
	if err != nil {
		h.fail(w, r, errorFlag(err), http.StatusSeeOther)
		return
	}

	h.login(w, r, account)
}

// Logout handles POST /auth/logout. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if handle := session.HandleFromRequest(r, h.signer); handle != "" {
		h.sessions.Destroy(handle)
	}
	h.cookies.clearSession(w)
	response.Success(w)
}

// currentUserResponse is the body of GET /api/user
type currentUserResponse struct {
	Account  response.AccountResponse `json:"account"`
	Provider *string                  `json:"provider"`
}

// CurrentUser handles GET /api/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	sess := middleware.GetSession(r.Context())
	if account == nil || sess == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
		return
	}

	body := currentUserResponse{Account: response.AccountFromModel(account)}
	if sess.Provider != "" {
		provider := sess.Provider
		body.Provider = &provider
	}
	response.JSON(w, http.StatusOK, body)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, account *model.Account) {
	sess, err := h.sessions.Create(account, "", "")
	if err == nil {
		err = h.startSession(w, sess)
	}
	if err != nil {
		h.logger.Error("start session", slog.String("error", err.Error()))
		h.fail(w, r, FlagFailed, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.dashboardURL, http.StatusSeeOther)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, sess *session.Session) error {
	signed, err := h.signer.Sign(sess)
	if err != nil {
		return err
	}
	h.cookies.setSession(w, signed, sess.ExpiresAt, h.clock.Now())
	return nil
}

// fail redirects to the login page with a generic error flag
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, flag string, status int) {
	http.Redirect(w, r, withQuery(h.loginURL, "error", flag), status)
}

func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func errorFlag(err error) string {
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		return FlagUnavailable
	case errors.Is(err, identity.ErrInvalidCredentials):
		return FlagInvalidCredentials
	case errors.Is(err, model.ErrDuplicateNickname):
		return FlagNicknameTaken
	case errors.Is(err, model.ErrDuplicateIP):
		return FlagAddressTaken
	case errors.Is(err, model.ErrInvalidNickname),
		errors.Is(err, model.ErrReservedNickname),
		errors.Is(err, model.ErrInvalidEmail),
		errors.Is(err, model.ErrInvalidPassword):
		return FlagInvalidInput
	default:
		return FlagFailed
	}
}
