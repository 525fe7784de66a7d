package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/gameaccounts/internal/api/middleware"
	"github.com/mcoot/gameaccounts/internal/api/request"
	"github.com/mcoot/gameaccounts/internal/api/response"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/session"
)

// SessionHandler handles login and logout
type SessionHandler struct {
	identity *identity.Service
	sessions *session.Manager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(identity *identity.Service, sessions *session.Manager) *SessionHandler {
	return &SessionHandler{
		identity: identity,
		sessions: sessions,
	}
}

// Login handles POST /api/v1/sessions
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
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

	account, err := h.identity.Authenticate(r.Context(), req.Nickname, req.Password)
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

// Logout handles DELETE /api/v1/sessions/current
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.GetSession(r.Context()); sess != nil {
		h.sessions.Destroy(sess.Handle)
	}
	response.NoContent(w)
}
