package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinRate(t *testing.T) {
	tests := []struct {
		name   string
		wins   int
		played int
		want   int
	}{
		{"no games", 0, 0, 0},
		{"all wins", 4, 4, 100},
		{"rounds half up", 1, 8, 13},
		{"rounds down", 1, 3, 33},
		{"two thirds", 2, 3, 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WinRate(tt.wins, tt.played))
		})
	}
}

func TestStatsRecordKeepsWinRateConsistent(t *testing.T) {
	var s Stats
	s.Record(OutcomeWin)
	s.Record(OutcomeLoss)
	s.Record(OutcomeDraw)

	assert.Equal(t, Stats{GamesPlayed: 3, Wins: 1, Losses: 1, Draws: 1, WinRate: 33}, s)
}

func TestNicknameSeed(t *testing.T) {
	assert.Equal(t, "demo_user", NicknameSeed("Demo User"))
	assert.Equal(t, "a_b_c", NicknameSeed("a.b-c"))
	assert.Equal(t, "octocat", NicknameSeed("octocat"))
}

func TestValidateNickname(t *testing.T) {
	got, err := ValidateNickname("  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got)

	_, err = ValidateNickname("   ")
	assert.ErrorIs(t, err, ErrInvalidNickname)

	_, err = ValidateNickname("abcdefghijklmnopqrstuvwxyz0123456")
	assert.ErrorIs(t, err, ErrInvalidNickname)

	for _, ok := range []string{"bob.smith", "x-y_z", "Zed99"} {
		_, err = ValidateNickname(ok)
		assert.NoError(t, err, ok)
	}

	// Nicknames are path segments in the API
	for _, bad := range []string{"a/b", "a b", "a%2Fb", "..", ".", "café", "a?b"} {
		_, err = ValidateNickname(bad)
		assert.ErrorIs(t, err, ErrInvalidNickname, bad)
	}

	for _, reserved := range []string{"me", "ME", "By-Address"} {
		_, err = ValidateNickname(reserved)
		assert.ErrorIs(t, err, ErrReservedNickname, reserved)
	}
}

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ValidateEmail("not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	got, err = ValidateEmail(" a@b.c ")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", got)
}

func TestCloneDoesNotShareFriends(t *testing.T) {
	a := Account{ID: "1", Friends: []Friend{{Nickname: "bob", Status: FriendPending}}}
	c := a.Clone()
	c.Friends[0].Status = FriendAccepted

	assert.Equal(t, FriendPending, a.Friends[0].Status)
}

func TestCheckInvariants(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid collection", func(t *testing.T) {
		accounts := []Account{
			{ID: "1", Nickname: "alice", RegistrationIP: "10.0.0.1", CreatedAt: now},
			{ID: "2", Nickname: "bob", Provider: "github", ProviderUserID: "7", RegistrationIP: "10.0.0.1"},
		}
		assert.NoError(t, CheckInvariants(accounts))
	})

	t.Run("nickname clash ignores case", func(t *testing.T) {
		accounts := []Account{{ID: "1", Nickname: "Alice"}, {ID: "2", Nickname: "alice"}}
		assert.ErrorIs(t, CheckInvariants(accounts), ErrDuplicateNickname)
	})

	t.Run("direct accounts share an address", func(t *testing.T) {
		accounts := []Account{
			{ID: "1", Nickname: "a", RegistrationIP: "10.0.0.1"},
			{ID: "2", Nickname: "b", RegistrationIP: "10.0.0.1"},
		}
		assert.ErrorIs(t, CheckInvariants(accounts), ErrDuplicateIP)
	})

	t.Run("provider identity linked twice", func(t *testing.T) {
		accounts := []Account{
			{ID: "1", Nickname: "a", Provider: "github", ProviderUserID: "7"},
			{ID: "2", Nickname: "b", Provider: "github", ProviderUserID: "7"},
		}
		assert.ErrorIs(t, CheckInvariants(accounts), ErrDuplicateFederation)
	})

	t.Run("stale win rate", func(t *testing.T) {
		accounts := []Account{{ID: "1", Nickname: "a", Stats: Stats{GamesPlayed: 2, Wins: 1, WinRate: 10}}}
		assert.Error(t, CheckInvariants(accounts))
	})
}
