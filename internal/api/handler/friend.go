package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameaccounts/internal/api/middleware"
	"github.com/mcoot/gameaccounts/internal/api/request"
	"github.com/mcoot/gameaccounts/internal/api/response"
	"github.com/mcoot/gameaccounts/internal/services/identity"
)

// FriendHandler handles friend list endpoints
type FriendHandler struct {
	identity *identity.Service
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(identity *identity.Service) *FriendHandler {
	return &FriendHandler{identity: identity}
}

// List handles GET /api/v1/accounts/me/friends
func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	incoming, err := h.identity.IncomingRequests(r.Context(), account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FriendsResponse{
		Friends:  response.FriendsFromModel(account.Friends),
		Incoming: response.FriendsFromModel(incoming),
	})
}

// Add handles POST /api/v1/accounts/me/friends
func (h *FriendHandler) Add(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.AddFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Nickname == "" {
		WriteError(w, NewInvalidRequestError("nickname is required"))
		return
	}

	updated, err := h.identity.AddFriend(r.Context(), account.ID, req.Nickname)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.FriendsFromModel(updated.Friends))
}

// Accept handles POST /api/v1/accounts/me/friends/{nickname}/accept
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	updated, err := h.identity.AcceptFriend(r.Context(), account.ID, mux.Vars(r)["nickname"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FriendsFromModel(updated.Friends))
}

// Remove handles DELETE /api/v1/accounts/me/friends/{nickname}
func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	if _, err := h.identity.RemoveFriend(r.Context(), account.ID, mux.Vars(r)["nickname"]); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
