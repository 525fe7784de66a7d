package response

import (
	"time"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/services/session"
)

// AccountResponse is the owner's view of an account. Credential and
// registration address never leave the server.
type AccountResponse struct {
	ID        string           `json:"id"`
	Nickname  string           `json:"nickname"`
	Email     string           `json:"email"`
	Provider  string           `json:"provider,omitempty"`
	Avatar    string           `json:"avatar,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Friends   []FriendResponse `json:"friends"`
	Stats     StatsResponse    `json:"stats"`
}

// PublicAccountResponse is what other users can see of an account
type PublicAccountResponse struct {
	Nickname  string        `json:"nickname"`
	Avatar    string        `json:"avatar,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Stats     StatsResponse `json:"stats"`
}

// FriendResponse represents one friend list entry
type FriendResponse struct {
	Nickname string    `json:"nickname"`
	Status   string    `json:"status"`
	AddedAt  time.Time `json:"added_at"`
}

// StatsResponse represents game counters
type StatsResponse struct {
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Draws       int `json:"draws"`
	WinRate     int `json:"win_rate"`
}

// FriendsResponse lists the friend entries of the caller and the pending
// requests addressed to them
type FriendsResponse struct {
	Friends  []FriendResponse `json:"friends"`
	Incoming []FriendResponse `json:"incoming"`
}

// SessionResponse is returned after register and login
type SessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   AccountResponse `json:"account"`
}

// ProvidersResponse lists the enabled OAuth providers
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// AccountFromModel converts an account to the owner's view
func AccountFromModel(a *model.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Nickname:  a.Nickname,
		Email:     a.Email,
		Provider:  a.Provider,
		Avatar:    a.Avatar,
		CreatedAt: a.CreatedAt,
		Friends:   FriendsFromModel(a.Friends),
		Stats:     StatsFromModel(a.Stats),
	}
}

// PublicAccountFromModel converts an account to the public view
func PublicAccountFromModel(a *model.Account) PublicAccountResponse {
	return PublicAccountResponse{
		Nickname:  a.Nickname,
		Avatar:    a.Avatar,
		CreatedAt: a.CreatedAt,
		Stats:     StatsFromModel(a.Stats),
	}
}

// FriendsFromModel converts friend entries, never returning nil
func FriendsFromModel(friends []model.Friend) []FriendResponse {
	out := make([]FriendResponse, 0, len(friends))
	for _, f := range friends {
		out = append(out, FriendResponse{
			Nickname: f.Nickname,
			Status:   string(f.Status),
			AddedAt:  f.AddedAt,
		})
	}
	return out
}

// StatsFromModel converts game counters
func StatsFromModel(s model.Stats) StatsResponse {
	return StatsResponse{
		GamesPlayed: s.GamesPlayed,
		Wins:        s.Wins,
		Losses:      s.Losses,
		Draws:       s.Draws,
		WinRate:     s.WinRate,
	}
}

// SessionFromModel builds the login response. The token is the raw session
// handle, presented back as a bearer token.
func SessionFromModel(s *session.Session, a *model.Account) SessionResponse {
	return SessionResponse{
		Token:     s.Handle,
		ExpiresAt: s.ExpiresAt,
		Account:   AccountFromModel(a),
	}
}
