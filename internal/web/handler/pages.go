package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	rootmw "github.com/mcoot/gameaccounts/internal/middleware"
	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/web/middleware"
	"github.com/mcoot/gameaccounts/internal/web/templates/layout"
	"github.com/mcoot/gameaccounts/internal/web/templates/pages"
)

// errorMessages are the user-facing texts of the login error flags
var errorMessages = map[string]string{
	FlagOAuthFailed:        "Sign-in with the provider failed. Please try again.",
	FlagInvalidCredentials: "Invalid nickname or password.",
	FlagNicknameTaken:      "That nickname is already taken.",
	FlagAddressTaken:       "An account was already registered from this network.",
	FlagInvalidInput:       "Please check the form and try again.",
	FlagUnavailable:        "Accounts are unavailable right now. Try again later.",
	FlagFailed:             "Something went wrong. Please try again.",
}

// ProviderLister reports the enabled OAuth providers
type ProviderLister interface {
	Providers() []string
}

// AddressLookup finds the account last registered from a client address
type AddressLookup interface {
	FindByIP(ctx context.Context, ip string) (*model.Account, error)
}

// PageHandler renders the sign-in and dashboard pages
type PageHandler struct {
	providers    ProviderLister
	accounts     AddressLookup
	logger       *slog.Logger
	dashboardURL string
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(providers ProviderLister, accounts AddressLookup, logger *slog.Logger, dashboardURL string) *PageHandler {
	return &PageHandler{
		providers:    providers,
		accounts:     accounts,
		logger:       logger,
		dashboardURL: dashboardURL,
	}
}

// Login renders the sign-in page
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAccount(r.Context()) != nil {
		// Already logged in
		http.Redirect(w, r, h.dashboardURL, http.StatusSeeOther)
		return
	}

	data := pages.LoginData{
		PageData:  layout.PageData{Title: "Sign in"},
		Providers: h.providers.Providers(),
	}
	if flag := r.URL.Query().Get("error"); flag != "" {
		data.Error = errorMessages[flag]
		if data.Error == "" {
			data.Error = errorMessages[FlagFailed]
		}
	}

	// Returning visitors get the nickname last registered from their address
	account, err := h.accounts.FindByIP(r.Context(), rootmw.ClientIP(r.Context()))
	switch {
	case err == nil:
		data.Nickname = account.Nickname
	case !errors.Is(err, model.ErrAccountNotFound):
		h.logger.Warn("look up account by address", slog.String("error", err.Error()))
	}

	h.render(w, r, pages.Login(data))
}

// Dashboard renders the signed-in account
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	h.render(w, r, pages.Dashboard(pages.DashboardData{
		PageData: layout.PageData{Title: "Dashboard", Account: account},
	}))
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		h.logger.Error("render page", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
