package oauth

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// ProviderSpec is the capability table entry for one OAuth provider. The
// differences between providers live here as data, not in the flow.
type ProviderSpec struct {
	Name        string
	AuthURL     string
	TokenURL    string
	UserInfoURL string

	// EmailsURL, when set, is fetched once if the profile has no email.
	// It must return [{"email","primary","verified"}].
	EmailsURL string

	Scopes []string

	// IDField and EmailField name the user-info fields holding the stable
	// user id and the email address.
	IDField    string
	EmailField string

	// NicknameFields are tried in order when seeding a nickname
	NicknameFields []string

	// AuthParams are added to the authorize redirect
	AuthParams map[string]string

	// Avatar derives the avatar URL from the user-info document
	Avatar func(info UserInfo) string
}

// ProviderConfig holds the credentials of one provider. Endpoint fields
// override the built-in URLs when set.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
	EmailsURL   string
}

// Enabled reports whether the provider has credentials
func (c ProviderConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// BuiltinProviders returns the capability table of supported providers
func BuiltinProviders() map[string]ProviderSpec {
	return map[string]ProviderSpec{
		"github": {
			Name:           "github",
			AuthURL:        "https://github.com/login/oauth/authorize",
			TokenURL:       "https://github.com/login/oauth/access_token",
			UserInfoURL:    "https://api.github.com/user",
			EmailsURL:      "https://api.github.com/user/emails",
			Scopes:         []string{"user:email"},
			IDField:        "id",
			EmailField:     "email",
			NicknameFields: []string{"login", "name"},
			Avatar:         func(info UserInfo) string { return info.String("avatar_url") },
		},
		"discord": {
			Name:           "discord",
			AuthURL:        "https://discord.com/api/oauth2/authorize",
			TokenURL:       "https://discord.com/api/oauth2/token",
			UserInfoURL:    "https://discord.com/api/users/@me",
			Scopes:         []string{"identify", "email"},
			IDField:        "id",
			EmailField:     "email",
			NicknameFields: []string{"username", "global_name"},
			Avatar: func(info UserInfo) string {
				hash := info.String("avatar")
				if hash == "" {
					return ""
				}
				return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", info.String("id"), hash)
			},
		},
		"google": {
			Name:           "google",
			AuthURL:        "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:       "https://oauth2.googleapis.com/token",
			UserInfoURL:    "https://www.googleapis.com/oauth2/v2/userinfo",
			Scopes:         []string{"openid", "email", "profile"},
			IDField:        "id",
			EmailField:     "email",
			NicknameFields: []string{"name", "given_name"},
			AuthParams: map[string]string{
				"access_type": "offline",
				"prompt":      "consent",
			},
			Avatar: func(info UserInfo) string { return info.String("picture") },
		},
	}
}

// provider is a ProviderSpec bound to its credentials
type provider struct {
	spec   ProviderSpec
	oauth2 *oauth2.Config
}

func newProvider(spec ProviderSpec, cfg ProviderConfig) *provider {
	if cfg.AuthURL != "" {
		spec.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		spec.TokenURL = cfg.TokenURL
	}
	if cfg.UserInfoURL != "" {
		spec.UserInfoURL = cfg.UserInfoURL
	}
	if cfg.EmailsURL != "" {
		spec.EmailsURL = cfg.EmailsURL
	}
	scopes := spec.Scopes
	if len(cfg.Scopes) > 0 {
		scopes = cfg.Scopes
	}

	return &provider{
		spec: spec,
		oauth2: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spec.AuthURL,
				TokenURL: spec.TokenURL,
				// Credentials go in the form body
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

func (p *provider) authCodeURL(state string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(p.spec.AuthParams))
	for k, v := range p.spec.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return p.oauth2.AuthCodeURL(state, opts...)
}

// UserInfo is a decoded user-info document
type UserInfo map[string]any

// String returns a field as a string. Numeric ids are formatted without
// exponent.
func (u UserInfo) String(key string) string {
	switch v := u[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// firstOf returns the non-empty values of fields, in order
func (u UserInfo) firstOf(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := u.String(f); v != "" {
			out = append(out, v)
		}
	}
	return out
}
