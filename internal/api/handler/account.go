package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameaccounts/internal/api/middleware"
	"github.com/mcoot/gameaccounts/internal/api/request"
	"github.com/mcoot/gameaccounts/internal/api/response"
	rootmw "github.com/mcoot/gameaccounts/internal/middleware"
	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/session"
)

// AccountHandler handles account endpoints
type AccountHandler struct {
	identity *identity.Service
	sessions *session.Manager
	logger   *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(identity *identity.Service, sessions *session.Manager, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		identity: identity,
		sessions: sessions,
		logger:   logger,
	}
}

// Register handles POST /api/v1/accounts
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Nickname == "" {
		WriteError(w, NewInvalidRequestError("nickname is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	account, err := h.identity.ResolveDirect(r.Context(), identity.Registration{
		Nickname: req.Nickname,
		Email:    req.Email,
		Password: req.Password,
		IP:       rootmw.ClientIP(r.Context()),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	sess, err := h.sessions.Create(account, "", "")
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(sess, account))
}

// List handles GET /api/v1/accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.identity.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.PublicAccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, response.PublicAccountFromModel(&accounts[i]))
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/accounts/{nickname}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.identity.GetByNickname(r.Context(), mux.Vars(r)["nickname"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PublicAccountFromModel(account))
}

// ByAddress handles GET /api/v1/accounts/by-address. It finds the newest
// directly registered account created from the caller's address.
func (h *AccountHandler) ByAddress(w http.ResponseWriter, r *http.Request) {
	account, err := h.identity.FindByIP(r.Context(), rootmw.ClientIP(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PublicAccountFromModel(account))
}

// GetMe handles GET /api/v1/accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	response.JSON(w, http.StatusOK, response.AccountFromModel(account))
}

// UpdateMe handles PATCH /api/v1/accounts/me
func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Nickname == nil && req.Email == nil {
		WriteError(w, NewInvalidRequestError("nothing to update"))
		return
	}

	updated, err := h.identity.UpdateProfile(r.Context(), account.ID, identity.ProfileUpdate{
		Nickname: req.Nickname,
		Email:    req.Email,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(updated))
}

// DeleteMe handles DELETE /api/v1/accounts/me
func (h *AccountHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	if err := h.identity.DeleteAccount(r.Context(), account.ID); err != nil {
		WriteError(w, err)
		return
	}

	dropped := h.sessions.DestroyForAccount(account.ID)
	h.logger.Debug("sessions dropped for deleted account",
		slog.String("account_id", account.ID),
		slog.Int("sessions_dropped", dropped),
	)
	response.NoContent(w)
}

// RecordResult handles POST /api/v1/accounts/me/results
func (h *AccountHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.RecordResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	updated, err := h.identity.RecordResult(r.Context(), account.ID, model.Outcome(req.Outcome))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsFromModel(updated.Stats))
}
