package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/gameaccounts/internal/model"
)

// Transform receives a private copy of the collection and returns the
// collection to commit. Returning an error aborts the mutation with nothing
// written.
type Transform func(accounts []model.Account) ([]model.Account, error)

// AccountStore serializes every read-modify-write of the account document.
//
// The mutex only covers this process. Two processes sharing one backend can
// still interleave load and replace; see DESIGN.md.
type AccountStore struct {
	backend Backend
	logger  *slog.Logger

	mu sync.Mutex
}

// New creates an AccountStore over the given backend
func New(backend Backend, logger *slog.Logger) *AccountStore {
	return &AccountStore{
		backend: backend,
		logger:  logger,
	}
}

// Init loads the document once to verify the backend is reachable and
// reports legacy records that break the collection invariants. Broken
// records are not repaired; the next mutation that touches the collection
// will be rejected until they are fixed.
func (s *AccountStore) Init(ctx context.Context) error {
	accounts, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	if err := model.CheckInvariants(accounts); err != nil {
		s.logger.Warn("account document violates invariants", "error", err)
	}
	s.logger.Info("account store ready", "accounts", len(accounts))
	return nil
}

// Teardown flushes buffered writes and closes the backend
func (s *AccountStore) Teardown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if f, ok := s.backend.(Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush account store: %w", err))
		}
	}
	if c, ok := s.backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close account store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LoadAll returns a normalized copy of every account
func (s *AccountStore) LoadAll(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.backend.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load accounts: %w", ErrUnavailable, err)
	}
	accounts = model.CloneAccounts(accounts)
	for i := range accounts {
		accounts[i].Normalize()
	}
	return accounts, nil
}

// ReplaceAll overwrites the collection after normalizing and checking it.
// It takes the same lock as Mutate.
func (s *AccountStore) ReplaceAll(ctx context.Context, accounts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, model.CloneAccounts(accounts))
}

// Mutate runs load, transform and replace as one critical section. A
// transform error or an invariant violation leaves the store untouched.
func (s *AccountStore) Mutate(ctx context.Context, fn Transform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

func (s *AccountStore) commit(ctx context.Context, accounts []model.Account) error {
	if accounts == nil {
		accounts = []model.Account{}
	}
	for i := range accounts {
		accounts[i].Normalize()
	}
	if err := model.CheckInvariants(accounts); err != nil {
		return fmt.Errorf("mutation rejected: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := s.backend.ReplaceAll(ctx, accounts); err != nil {
		return fmt.Errorf("%w: replace accounts: %w", ErrUnavailable, err)
	}
	return nil
}

// Read helpers

// List returns every account ordered by creation time
func (s *AccountStore) List(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// Get returns the account with the given id
func (s *AccountStore) Get(ctx context.Context, id string) (*model.Account, error) {
	return s.find(ctx, func(a *model.Account) bool { return a.ID == id })
}

// FindByNickname looks an account up by nickname, ignoring case
func (s *AccountStore) FindByNickname(ctx context.Context, nickname string) (*model.Account, error) {
	key := model.NicknameKey(nickname)
	return s.find(ctx, func(a *model.Account) bool { return model.NicknameKey(a.Nickname) == key })
}

// FindByFederation looks an account up by provider identity
func (s *AccountStore) FindByFederation(ctx context.Context, provider, providerUserID string) (*model.Account, error) {
	return s.find(ctx, func(a *model.Account) bool { return a.HasFederation(provider, providerUserID) })
}

// FindByRegistrationIP returns the newest directly registered account
// created from ip
func (s *AccountStore) FindByRegistrationIP(ctx context.Context, ip string) (*model.Account, error) {
	if ip == "" {
		return nil, model.ErrAccountNotFound
	}
	accounts, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var newest *model.Account
	for i := range accounts {
		a := &accounts[i]
		if a.IsFederated() || a.RegistrationIP != ip {
			continue
		}
		if newest == nil || a.CreatedAt.After(newest.CreatedAt) {
			newest = a
		}
	}
	if newest == nil {
		return nil, model.ErrAccountNotFound
	}
	return newest, nil
}

func (s *AccountStore) find(ctx context.Context, match func(*model.Account) bool) (*model.Account, error) {
	accounts, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if match(&accounts[i]) {
			return &accounts[i], nil
		}
	}
	return nil, model.ErrAccountNotFound
}
