package identity

import (
	"context"

	"github.com/mcoot/gameaccounts/internal/model"
)

// Get returns an account by id
func (s *Service) Get(ctx context.Context, id string) (*model.Account, error) {
	return s.store.Get(ctx, id)
}

// GetByNickname returns an account by nickname, ignoring case
func (s *Service) GetByNickname(ctx context.Context, nickname string) (*model.Account, error) {
	return s.store.FindByNickname(ctx, nickname)
}

// List returns every account, oldest first
func (s *Service) List(ctx context.Context) ([]model.Account, error) {
	return s.store.List(ctx)
}

// FindByIP returns the newest directly registered account created from ip
func (s *Service) FindByIP(ctx context.Context, ip string) (*model.Account, error) {
	return s.store.FindByRegistrationIP(ctx, ip)
}

// UpdateProfile changes nickname and/or email. Friend lists of other
// accounts keep the old nickname.
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*model.Account, error) {
	var nickname, email string
	var err error
	if update.Nickname != nil {
		if nickname, err = model.ValidateNickname(*update.Nickname); err != nil {
			return nil, err
		}
	}
	if update.Email != nil {
		if email, err = model.ValidateEmail(*update.Email); err != nil {
			return nil, err
		}
	}

	return s.update(ctx, id, func(accounts []model.Account, a *model.Account) error {
		if update.Nickname != nil {
			key := model.NicknameKey(nickname)
			for i := range accounts {
				if accounts[i].ID != id && model.NicknameKey(accounts[i].Nickname) == key {
					return model.ErrDuplicateNickname
				}
			}
			a.Nickname = nickname
		}
		if update.Email != nil {
			a.Email = email
		}
		return nil
	})
}

// DeleteAccount removes an account. References to it in other friend lists
// are left in place.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	err := s.store.Mutate(ctx, func(accounts []model.Account) ([]model.Account, error) {
		for i := range accounts {
			if accounts[i].ID == id {
				return append(accounts[:i], accounts[i+1:]...), nil
			}
		}
		return nil, model.ErrAccountNotFound
	})
	if err != nil {
		return err
	}
	s.logger.Info("account deleted", "account_id", id)
	return nil
}

// RecordResult counts one finished game for an account
func (s *Service) RecordResult(ctx context.Context, id string, outcome model.Outcome) (*model.Account, error) {
	if !outcome.Valid() {
		return nil, model.ErrInvalidOutcome
	}
	return s.update(ctx, id, func(_ []model.Account, a *model.Account) error {
		a.Stats.Record(outcome)
		return nil
	})
}

// update applies fn to the account with the given id inside one mutation
// and returns the committed account
func (s *Service) update(ctx context.Context, id string, fn func(accounts []model.Account, a *model.Account) error) (*model.Account, error) {
	var result model.Account
	err := s.store.Mutate(ctx, func(accounts []model.Account) ([]model.Account, error) {
		idx := indexByID(accounts, id)
		if idx < 0 {
			return nil, model.ErrAccountNotFound
		}
		if err := fn(accounts, &accounts[idx]); err != nil {
			return nil, err
		}
		accounts[idx].Normalize()
		result = accounts[idx].Clone()
		return accounts, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func indexByID(accounts []model.Account, id string) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func indexByNickname(accounts []model.Account, nickname string) int {
	key := model.NicknameKey(nickname)
	for i := range accounts {
		if model.NicknameKey(accounts[i].Nickname) == key {
			return i
		}
	}
	return -1
}
