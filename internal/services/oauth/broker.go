package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"time"

	"golang.org/x/oauth2"

	"github.com/mcoot/gameaccounts/internal/dependencies/clock"
	"github.com/mcoot/gameaccounts/internal/dependencies/random"
	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/session"
)

// Errors
var (
	ErrUnknownProvider        = errors.New("unknown oauth provider")
	ErrInvalidState           = errors.New("invalid or expired authorization state")
	ErrProviderExchangeFailed = errors.New("provider exchange failed")
	ErrProviderTimeout        = errors.New("provider request timed out")
)

// stateBytes is the entropy of a state parameter
const stateBytes = 32

// Resolver maps a provider identity to an account
type Resolver interface {
	ResolveFederated(ctx context.Context, provider, providerUserID string, profile identity.Profile) (*model.Account, error)
}

// SessionIssuer starts a session for a resolved account
type SessionIssuer interface {
	Create(account *model.Account, provider, accessToken string) (*session.Session, error)
}

// Config holds configuration for the broker
type Config struct {
	// StateTTL is how long an authorize redirect stays redeemable
	StateTTL time.Duration

	// Timeout bounds each provider request. Nothing is retried.
	Timeout time.Duration

	// MaxPending caps outstanding authorize redirects across all browsers
	MaxPending int

	Providers map[string]ProviderConfig
}

// DefaultConfig returns default broker configuration
func DefaultConfig() Config {
	return Config{
		StateTTL:   10 * time.Minute,
		Timeout:    10 * time.Second,
		MaxPending: 10000,
		Providers:  map[string]ProviderConfig{},
	}
}

// CallbackResult is the outcome of a successful callback
type CallbackResult struct {
	Account *model.Account
	Session *session.Session
}

// Broker runs the authorization-code flow against the configured providers
type Broker struct {
	providers map[string]*provider
	resolver  Resolver
	sessions  SessionIssuer
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	client    *http.Client

	pending  *pendingStore
	stateTTL time.Duration
	timeout  time.Duration
}

// New creates a broker. Providers without credentials are skipped; a
// provider name outside the built-in table is a configuration error.
func New(cfg Config, resolver Resolver, sessions SessionIssuer, clock clock.Clock, random random.Random, logger *slog.Logger, client *http.Client) (*Broker, error) {
	defaults := DefaultConfig()
	if cfg.StateTTL == 0 {
		cfg.StateTTL = defaults.StateTTL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = defaults.MaxPending
	}
	if client == nil {
		client = http.DefaultClient
	}

	builtins := BuiltinProviders()
	providers := make(map[string]*provider)
	for name, pc := range cfg.Providers {
		spec, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}
		if !pc.Enabled() {
			logger.Warn("oauth provider has no credentials, disabled", "provider", name)
			continue
		}
		providers[name] = newProvider(spec, pc)
	}

	return &Broker{
		providers: providers,
		resolver:  resolver,
		sessions:  sessions,
		clock:     clock,
		random:    random,
		logger:    logger,
		client:    client,
		pending:   newPendingStore(clock, cfg.MaxPending),
		stateTTL:  cfg.StateTTL,
		timeout:   cfg.Timeout,
	}, nil
}

// Providers returns the names of the enabled providers, sorted
func (b *Broker) Providers() []string {
	names := make([]string, 0, len(b.providers))
	for name := range b.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CleanExpired removes expired pending authorizations and returns how many
// were removed
func (b *Broker) CleanExpired() int {
	return b.pending.sweep()
}

// RunSweeper calls CleanExpired every interval until ctx is done
func (b *Broker) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := b.CleanExpired(); n > 0 {
				b.logger.Info("expired oauth states removed", "count", n)
			}
		}
	}
}

// Initiate records a pending authorization for the browser identified by
// binding and returns the provider's authorize URL
func (b *Broker) Initiate(binding, providerName string) (string, error) {
	p, ok := b.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, providerName)
	}
	if binding == "" {
		return "", fmt.Errorf("browser binding is required")
	}

	state, err := b.random.Token(stateBytes)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	now := b.clock.Now()
	b.pending.put(binding, &PendingAuthorization{
		State:     state,
		Provider:  providerName,
		IssuedAt:  now,
		ExpiresAt: now.Add(b.stateTTL),
	})

	return p.authCodeURL(state), nil
}

// Callback completes the flow. The pending authorization is consumed before
// any provider request, so a replayed or forged state never reaches the
// network.
func (b *Broker) Callback(ctx context.Context, binding, providerName, code, state string) (*CallbackResult, error) {
	p, ok := b.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, providerName)
	}
	if !b.pending.consume(binding, providerName, state) {
		return nil, ErrInvalidState
	}
	if code == "" {
		return nil, fmt.Errorf("%w: no authorization code", ErrProviderExchangeFailed)
	}

	token, err := b.exchange(ctx, p, code)
	if err != nil {
		return nil, err
	}

	info, err := b.fetchUserInfo(ctx, p, token.AccessToken)
	if err != nil {
		return nil, err
	}
	providerUserID := info.String(p.spec.IDField)
	if providerUserID == "" {
		return nil, fmt.Errorf("%w: user info has no id", ErrProviderExchangeFailed)
	}

	email := info.String(p.spec.EmailField)
	if email == "" && p.spec.EmailsURL != "" {
		if email, err = b.fetchPrimaryEmail(ctx, p, token.AccessToken); err != nil {
			return nil, err
		}
	}

	profile := identity.Profile{
		NicknameCandidates: info.firstOf(p.spec.NicknameFields),
		Email:              email,
	}
	if p.spec.Avatar != nil {
		profile.Avatar = p.spec.Avatar(info)
	}

	account, err := b.resolver.ResolveFederated(ctx, providerName, providerUserID, profile)
	if err != nil {
		return nil, err
	}
	sess, err := b.sessions.Create(account, providerName, token.AccessToken)
	if err != nil {
		return nil, err
	}

	b.logger.Info("oauth login", "provider", providerName, "account_id", account.ID)
	return &CallbackResult{Account: account, Session: sess}, nil
}

func (b *Broker) exchange(ctx context.Context, p *provider, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.client)

	token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, classify("token exchange", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrProviderExchangeFailed)
	}
	return token, nil
}

// classify maps a provider request failure onto the broker's errors
func classify(step string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %w", ErrProviderTimeout, step, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrProviderExchangeFailed, step, err)
}
