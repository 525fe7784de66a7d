package model

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// MaxNicknameLength bounds nicknames chosen by users
const MaxNicknameLength = 32

// Account is a single user identity. Federated accounts carry Provider and
// ProviderUserID; directly registered accounts carry Credential and
// RegistrationIP instead.
type Account struct {
	ID             string    `json:"id"`
	Nickname       string    `json:"nickname"`
	Email          string    `json:"email"`
	Credential     string    `json:"credential,omitempty"`
	Provider       string    `json:"provider,omitempty"`
	ProviderUserID string    `json:"providerUserId,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
	RegistrationIP string    `json:"registrationIp,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Friends        []Friend  `json:"friends"`
	Stats          Stats     `json:"stats"`
}

// FriendStatus is the state of a friend list entry
type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
)

// Friend references another account by nickname. The reference is not
// rewritten when the other account is renamed or deleted.
type Friend struct {
	Nickname string       `json:"nickname"`
	Status   FriendStatus `json:"status"`
	AddedAt  time.Time    `json:"addedAt"`
}

// Stats are the game counters of an account
type Stats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Draws       int `json:"draws"`
	WinRate     int `json:"winRate"`
}

// Outcome is the result of one game from an account's point of view
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// Valid reports whether o is a known outcome
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeLoss, OutcomeDraw:
		return true
	}
	return false
}

// WinRate is round(wins/gamesPlayed*100), or 0 when no games were played
func WinRate(wins, gamesPlayed int) int {
	if gamesPlayed <= 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(gamesPlayed) * 100))
}

// Recompute derives WinRate from the counters
func (s *Stats) Recompute() {
	s.WinRate = WinRate(s.Wins, s.GamesPlayed)
}

// Record counts one game with the given outcome
func (s *Stats) Record(o Outcome) {
	s.GamesPlayed++
	switch o {
	case OutcomeWin:
		s.Wins++
	case OutcomeLoss:
		s.Losses++
	case OutcomeDraw:
		s.Draws++
	}
	s.Recompute()
}

// IsFederated reports whether the account was created through an OAuth provider
func (a *Account) IsFederated() bool {
	return a.Provider != "" && a.ProviderUserID != ""
}

// HasFederation reports whether the account is linked to the given provider identity
func (a *Account) HasFederation(provider, providerUserID string) bool {
	return a.IsFederated() && a.Provider == provider && a.ProviderUserID == providerUserID
}

// Normalize fills derived fields: WinRate and a non-nil friend list
func (a *Account) Normalize() {
	if a.Friends == nil {
		a.Friends = []Friend{}
	}
	a.Stats.Recompute()
}

// FindFriend returns the index of the friend entry for nickname, compared
// case-insensitively, or -1
func (a *Account) FindFriend(nickname string) int {
	key := NicknameKey(nickname)
	for i, f := range a.Friends {
		if NicknameKey(f.Nickname) == key {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the account
func (a Account) Clone() Account {
	if a.Friends != nil {
		friends := make([]Friend, len(a.Friends))
		copy(friends, a.Friends)
		a.Friends = friends
	}
	return a
}

// CloneAccounts deep copies a collection
func CloneAccounts(accounts []Account) []Account {
	out := make([]Account, len(accounts))
	for i := range accounts {
		out[i] = accounts[i].Clone()
	}
	return out
}

// NicknameKey is the form nicknames are compared in
func NicknameKey(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}

var nicknameSeedReplacer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// NicknameSeed reduces a provider login or display name to [a-z0-9_]
func NicknameSeed(raw string) string {
	return strings.ToLower(nicknameSeedReplacer.ReplaceAllString(raw, "_"))
}

var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// reservedNicknames collide with fixed path segments under /accounts
var reservedNicknames = map[string]struct{}{
	"me":         {},
	"by-address": {},
}

// ReservedNicknames returns the reserved names in NicknameKey form
func ReservedNicknames() map[string]struct{} {
	out := make(map[string]struct{}, len(reservedNicknames))
	for name := range reservedNicknames {
		out[name] = struct{}{}
	}
	return out
}

// IsReservedNickname reports whether nickname is a route segment
func IsReservedNickname(nickname string) bool {
	_, ok := reservedNicknames[NicknameKey(nickname)]
	return ok
}

// ValidateNickname checks a user-chosen nickname and returns it trimmed.
// Nicknames appear as URL path segments, so only [A-Za-z0-9_.-] is allowed.
func ValidateNickname(nickname string) (string, error) {
	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" || len(trimmed) > MaxNicknameLength {
		return "", ErrInvalidNickname
	}
	if !nicknamePattern.MatchString(trimmed) || trimmed == "." || trimmed == ".." {
		return "", ErrInvalidNickname
	}
	if IsReservedNickname(trimmed) {
		return "", ErrReservedNickname
	}
	return trimmed, nil
}

// ValidateEmail checks an optional email address and returns it trimmed
func ValidateEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", nil
	}
	at := strings.Index(trimmed, "@")
	if at <= 0 || at == len(trimmed)-1 {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}
