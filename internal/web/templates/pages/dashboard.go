package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/web/templates/layout"
)

// DashboardData holds data for the signed-in dashboard
type DashboardData struct {
	layout.PageData
}

// Dashboard renders the account, its stats and its friend list
func Dashboard(data DashboardData) templ.Component {
	return layout.Page(data.PageData, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		account := data.Account
		hw := layout.NewWriter(w)
		hw.Raw(`<h1>Welcome, `)
		hw.Text(account.Nickname)
		hw.Raw(`</h1>`)
		if account.Avatar != "" {
			hw.Raw(`<img class="avatar" alt="" src="`)
			hw.URL(account.Avatar)
			hw.Raw(`">`)
		}

		hw.Raw(`<dl class="stats">`)
		stat(hw, "Games", "games", itoa(account.Stats.GamesPlayed))
		stat(hw, "Wins", "wins", itoa(account.Stats.Wins))
		stat(hw, "Losses", "losses", itoa(account.Stats.Losses))
		stat(hw, "Draws", "draws", itoa(account.Stats.Draws))
		stat(hw, "Win rate", "win-rate", itoa(account.Stats.WinRate)+"%")
		hw.Raw(`</dl>`)

		hw.Raw(`<h2>Friends</h2><ul class="friends">`)
		if len(account.Friends) == 0 {
			hw.Raw(`<li class="empty">No friends yet</li>`)
		}
		for _, f := range account.Friends {
			friend(hw, f)
		}
		hw.Raw(`</ul>`)
		return hw.Err()
	}))
}

func stat(hw *layout.Writer, label, class, value string) {
	hw.Raw(`<dt>`)
	hw.Text(label)
	hw.Raw(`</dt><dd class="`)
	hw.Text(class)
	hw.Raw(`">`)
	hw.Text(value)
	hw.Raw(`</dd>`)
}

func friend(hw *layout.Writer, f model.Friend) {
	hw.Raw(`<li class="friend `)
	hw.Text(string(f.Status))
	hw.Raw(`">`)
	hw.Text(f.Nickname)
	hw.Raw(`</li>`)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
