package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/gameaccounts/internal/dependencies/clock"
	"github.com/mcoot/gameaccounts/internal/dependencies/random"
	"github.com/mcoot/gameaccounts/internal/model"
)

// Errors
var (
	ErrUnauthenticated = errors.New("unauthenticated")
)

// handleBytes is the entropy of a session handle
const handleBytes = 32

// Session binds an opaque handle to an account
type Session struct {
	Handle    string
	AccountID string
	// Provider is empty for direct logins
	Provider string
	// AccessToken is the provider token from the login, kept server-side only
	AccessToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// AccountLookup resolves the account behind a session
type AccountLookup interface {
	Get(ctx context.Context, id string) (*model.Account, error)
}

// Manager issues, validates and destroys sessions. Sessions live in
// process memory; a restart logs everyone out.
type Manager struct {
	accounts AccountLookup
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	duration time.Duration
}

// Config holds configuration for the session manager
type Config struct {
	Duration time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		Duration: 24 * time.Hour,
	}
}

// New creates a new session manager
func New(accounts AccountLookup, clock clock.Clock, random random.Random, logger *slog.Logger, cfg Config) *Manager {
	if cfg.Duration == 0 {
		cfg.Duration = DefaultConfig().Duration
	}
	return &Manager{
		accounts: accounts,
		clock:    clock,
		random:   random,
		logger:   logger,
		sessions: make(map[string]*Session),
		duration: cfg.Duration,
	}
}

// Create starts a new session for an account. Every login gets a fresh
// handle; earlier sessions of the account stay valid until they expire or
// are destroyed.
func (m *Manager) Create(account *model.Account, provider, accessToken string) (*Session, error) {
	token, err := m.random.Token(handleBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session handle: %w", err)
	}
	now := m.clock.Now()

	session := &Session{
		Handle:      "sess_" + token,
		AccountID:   account.ID,
		Provider:    provider,
		AccessToken: accessToken,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.duration),
	}

	m.mu.Lock()
	m.sessions[session.Handle] = session
	m.mu.Unlock()

	m.logger.Debug("session created", "account_id", account.ID, "provider", provider)
	return session, nil
}

// Validate returns the session and its current account. Expired sessions
// and sessions whose account was deleted are dropped.
func (m *Manager) Validate(ctx context.Context, handle string) (*Session, *model.Account, error) {
	if handle == "" {
		return nil, nil, ErrUnauthenticated
	}

	m.mu.RLock()
	session, ok := m.sessions[handle]
	m.mu.RUnlock()

	if !ok {
		return nil, nil, ErrUnauthenticated
	}

	if clock.Expired(m.clock, session.ExpiresAt) {
		m.Destroy(handle)
		return nil, nil, ErrUnauthenticated
	}

	account, err := m.accounts.Get(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			m.Destroy(handle)
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}

	copied := *session
	return &copied, account, nil
}

// Destroy removes a session. Unknown handles are ignored.
func (m *Manager) Destroy(handle string) {
	m.mu.Lock()
	delete(m.sessions, handle)
	m.mu.Unlock()
}

// DestroyForAccount removes every session of an account and returns how
// many there were
func (m *Manager) DestroyForAccount(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for handle, session := range m.sessions {
		if session.AccountID == accountID {
			delete(m.sessions, handle)
			removed++
		}
	}
	return removed
}

// CleanExpired removes expired sessions and returns how many were removed
func (m *Manager) CleanExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for handle, session := range m.sessions {
		if clock.Expired(m.clock, session.ExpiresAt) {
			delete(m.sessions, handle)
			removed++
		}
	}
	return removed
}

// Count returns the number of stored sessions, expired or not
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunSweeper calls CleanExpired every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.CleanExpired(); n > 0 {
				m.logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}
