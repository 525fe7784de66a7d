package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gameaccounts/internal/dependencies/clock"
	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	maxPasswordLength = 72
)

// Profile is what a provider told us about a federated user
type Profile struct {
	// NicknameCandidates are tried in order when seeding a nickname
	// (login, username, display name, global name)
	NicknameCandidates []string
	Email              string
	Avatar             string
}

// Registration is the input of a direct sign-up
type Registration struct {
	Nickname string
	Email    string
	Password string
	IP       string
}

// ProfileUpdate changes the editable fields of an account. Nil fields are
// left alone.
type ProfileUpdate struct {
	Nickname *string
	Email    *string
}

// Service maps external identities and direct sign-ups onto accounts and
// owns every account mutation.
type Service struct {
	store  *storage.AccountStore
	clock  clock.Clock
	logger *slog.Logger

	bcryptCost int
}

// Config holds configuration for the identity service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new identity service
func New(store *storage.AccountStore, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		store:      store,
		clock:      clock,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// ResolveFederated returns the account linked to a provider identity,
// creating it on first login. Returning users get their email (when the
// provider supplied one) and avatar refreshed; the last login wins.
func (s *Service) ResolveFederated(ctx context.Context, provider, providerUserID string, profile Profile) (*model.Account, error) {
	if provider == "" || providerUserID == "" {
		return nil, fmt.Errorf("provider identity is incomplete")
	}

	var result model.Account
	var created bool
	err := s.store.Mutate(ctx, func(accounts []model.Account) ([]model.Account, error) {
		for i := range accounts {
			a := &accounts[i]
			if !a.HasFederation(provider, providerUserID) {
				continue
			}
			if profile.Email != "" {
				a.Email = profile.Email
			}
			a.Avatar = profile.Avatar
			result = a.Clone()
			return accounts, nil
		}

		account := model.Account{
			ID:             uuid.NewString(),
			Nickname:       uniqueNickname(accounts, nicknameSeed(provider, providerUserID, profile)),
			Email:          profile.Email,
			Provider:       provider,
			ProviderUserID: providerUserID,
			Avatar:         profile.Avatar,
			CreatedAt:      s.clock.Now(),
			Friends:        []model.Friend{},
		}
		created = true
		result = account.Clone()
		return append(accounts, account), nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("account created", "account_id", result.ID, "nickname", result.Nickname, "provider", provider)
	} else {
		s.logger.Info("account refreshed", "account_id", result.ID, "provider", provider)
	}
	result.Normalize()
	return &result, nil
}

// ResolveDirect creates a directly registered account. The nickname must be
// free (ignoring case) and no other direct account may have been registered
// from the same address.
func (s *Service) ResolveDirect(ctx context.Context, reg Registration) (*model.Account, error) {
	nickname, err := model.ValidateNickname(reg.Nickname)
	if err != nil {
		return nil, err
	}
	email, err := model.ValidateEmail(reg.Email)
	if err != nil {
		return nil, err
	}
	if len(reg.Password) < minPasswordLength || len(reg.Password) > maxPasswordLength {
		return nil, model.ErrInvalidPassword
	}

	// Hash outside the store lock
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var result model.Account
	err = s.store.Mutate(ctx, func(accounts []model.Account) ([]model.Account, error) {
		key := model.NicknameKey(nickname)
		for i := range accounts {
			a := &accounts[i]
			if model.NicknameKey(a.Nickname) == key {
				return nil, model.ErrDuplicateNickname
			}
			if reg.IP != "" && !a.IsFederated() && a.RegistrationIP == reg.IP {
				return nil, model.ErrDuplicateIP
			}
		}

		result = model.Account{
			ID:             uuid.NewString(),
			Nickname:       nickname,
			Email:          email,
			Credential:     string(hash),
			RegistrationIP: reg.IP,
			CreatedAt:      s.clock.Now(),
			Friends:        []model.Friend{},
		}
		return append(accounts, result.Clone()), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered", "account_id", result.ID, "nickname", result.Nickname)
	return &result, nil
}

// Authenticate checks a direct account's password
func (s *Service) Authenticate(ctx context.Context, nickname, password string) (*model.Account, error) {
	account, err := s.store.FindByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if account.Credential == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Credential), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// nicknameSeed picks the first usable provider name, falling back to
// <provider>_user_<id>
func nicknameSeed(provider, providerUserID string, profile Profile) string {
	for _, candidate := range profile.NicknameCandidates {
		if seed := model.NicknameSeed(candidate); seed != "" {
			return seed
		}
	}
	return model.NicknameSeed(provider + "_user_" + providerUserID)
}

// uniqueNickname returns seed, or seed_1, seed_2, ... for the first value no
// account holds (ignoring case)
func uniqueNickname(accounts []model.Account, seed string) string {
	taken := make(map[string]struct{}, len(accounts))
	for name := range model.ReservedNicknames() {
		taken[name] = struct{}{}
	}
	for i := range accounts {
		taken[model.NicknameKey(accounts[i].Nickname)] = struct{}{}
	}
	candidate := seed
	for n := 1; ; n++ {
		if _, ok := taken[model.NicknameKey(candidate)]; !ok {
			return candidate
		}
		candidate = seed + "_" + strconv.Itoa(n)
	}
}
