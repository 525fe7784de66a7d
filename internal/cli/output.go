package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Account:
		o.printAccount(v)
	case PublicAccount:
		o.printPublicAccount(v)
	case []PublicAccount:
		for _, a := range v {
			fmt.Printf("%-32s %3d played  %3d%% won\n", a.Nickname, a.Stats.GamesPlayed, a.Stats.WinRate)
		}
	case SessionResult:
		o.printAccount(v.Account)
		fmt.Printf("Token: %s\n", v.Token)
		fmt.Printf("Expires: %s\n", v.ExpiresAt.Local().Format(time.RFC1123))
	case FriendList:
		o.printFriends("Friends", v.Friends)
		o.printFriends("Incoming requests", v.Incoming)
	case []Friend:
		o.printFriends("Friends", v)
	case Stats:
		o.printStats(v)
	case ProviderList:
		if len(v.Providers) == 0 {
			fmt.Println("No OAuth providers enabled")
			return
		}
		fmt.Printf("Providers: %s\n", strings.Join(v.Providers, ", "))
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		o.printJSON(data)
	}
}

// Account is the caller's own account (matches API)
type Account struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Friends   []Friend  `json:"friends"`
	Stats     Stats     `json:"stats"`
}

// PublicAccount is another user's account
type PublicAccount struct {
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Stats     Stats     `json:"stats"`
}

// Friend is one friend list entry
type Friend struct {
	Nickname string    `json:"nickname"`
	Status   string    `json:"status"`
	AddedAt  time.Time `json:"added_at"`
}

// FriendList is the caller's friends plus requests addressed to them
type FriendList struct {
	Friends  []Friend `json:"friends"`
	Incoming []Friend `json:"incoming"`
}

// Stats holds game counters
type Stats struct {
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Draws       int `json:"draws"`
	WinRate     int `json:"win_rate"`
}

// SessionResult is returned by register and login
type SessionResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   Account   `json:"account"`
}

// ProviderList names the enabled OAuth providers
type ProviderList struct {
	Providers []string `json:"providers"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAccount(a Account) {
	fmt.Printf("Account: %s (%s)\n", a.Nickname, a.ID)
	if a.Email != "" {
		fmt.Printf("Email: %s\n", a.Email)
	}
	if a.Provider != "" {
		fmt.Printf("Signed in with: %s\n", a.Provider)
	}
	fmt.Printf("Created: %s\n", a.CreatedAt.Local().Format(time.RFC1123))
	o.printStats(a.Stats)
	if len(a.Friends) > 0 {
		o.printFriends("Friends", a.Friends)
	}
}

func (o *Output) printPublicAccount(a PublicAccount) {
	fmt.Printf("Account: %s\n", a.Nickname)
	fmt.Printf("Created: %s\n", a.CreatedAt.Local().Format(time.RFC1123))
	o.printStats(a.Stats)
}

func (o *Output) printStats(s Stats) {
	fmt.Printf("Games: %d (W %d / L %d / D %d), win rate %d%%\n",
		s.GamesPlayed, s.Wins, s.Losses, s.Draws, s.WinRate)
}

func (o *Output) printFriends(title string, friends []Friend) {
	fmt.Printf("%s (%d):\n", title, len(friends))
	for _, f := range friends {
		fmt.Printf("  - %s [%s]\n", f.Nickname, f.Status)
	}
}
