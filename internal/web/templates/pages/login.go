package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/web/templates/layout"
)

// LoginData holds data for the sign-in page
type LoginData struct {
	layout.PageData
	// Error is the message for a failed sign-in, already made generic
	Error     string
	Providers []string
	// Nickname pre-fills the login form, e.g. with the account last
	// registered from the caller's address
	Nickname string
}

// Login renders the sign-in page
func Login(data LoginData) templ.Component {
	return layout.Page(data.PageData, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := layout.NewWriter(w)
		hw.Raw(`<h1>Sign in</h1>`)
		if data.Error != "" {
			hw.Raw(`<p class="error" role="alert">`)
			hw.Text(data.Error)
			hw.Raw(`</p>`)
		}

		hw.Raw(`<ul class="providers">`)
		for _, provider := range data.Providers {
			hw.Raw(`<li><a class="provider" href="`)
			hw.URL("/auth/" + url.PathEscape(provider))
			hw.Raw(`">Continue with `)
			hw.Text(provider)
			hw.Raw(`</a></li>`)
		}
		hw.Raw(`</ul>`)

		hw.Raw(`<form method="post" action="/auth/login" id="login"><input name="nickname" placeholder="Nickname" value="`)
		hw.Text(data.Nickname)
		hw.Raw(`" required><input name="password" type="password" placeholder="Password" required>`)
		hw.Raw(`<button type="submit">Sign in</button></form>`)

		hw.Raw(`<form method="post" action="/auth/register" id="register">`)
		hw.Raw(`<input name="nickname" placeholder="Nickname" pattern="[A-Za-z0-9_.\-]+" maxlength="`)
		hw.Text(maxNickname)
		hw.Raw(`" required><input name="email" type="email" placeholder="Email (optional)">`)
		hw.Raw(`<input name="password" type="password" placeholder="Password" minlength="8" required>`)
		hw.Raw(`<button type="submit">Create account</button></form>`)
		return hw.Err()
	}))
}

var maxNickname = itoa(model.MaxNicknameLength)
