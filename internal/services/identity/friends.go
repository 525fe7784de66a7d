package identity

import (
	"context"

	"github.com/mcoot/gameaccounts/internal/model"
)

// AddFriend adds a pending entry for nickname. The target must exist at the
// time of the request.
func (s *Service) AddFriend(ctx context.Context, id, nickname string) (*model.Account, error) {
	return s.update(ctx, id, func(accounts []model.Account, a *model.Account) error {
		target := indexByNickname(accounts, nickname)
		if target < 0 {
			return model.ErrAccountNotFound
		}
		if accounts[target].ID == a.ID {
			return model.ErrFriendSelf
		}
		if a.FindFriend(nickname) >= 0 {
			return model.ErrFriendExists
		}
		a.Friends = append(a.Friends, model.Friend{
			Nickname: accounts[target].Nickname,
			Status:   model.FriendPending,
			AddedAt:  s.clock.Now(),
		})
		return nil
	})
}

// AcceptFriend accepts the pending request requester holds for the caller.
// Both sides end up with an accepted entry.
func (s *Service) AcceptFriend(ctx context.Context, id, requester string) (*model.Account, error) {
	return s.update(ctx, id, func(accounts []model.Account, a *model.Account) error {
		from := indexByNickname(accounts, requester)
		if from < 0 {
			return model.ErrAccountNotFound
		}
		other := &accounts[from]
		entry := other.FindFriend(a.Nickname)
		if entry < 0 || other.Friends[entry].Status != model.FriendPending {
			return model.ErrFriendRequestNotFound
		}
		other.Friends[entry].Status = model.FriendAccepted

		if own := a.FindFriend(other.Nickname); own >= 0 {
			a.Friends[own].Status = model.FriendAccepted
		} else {
			a.Friends = append(a.Friends, model.Friend{
				Nickname: other.Nickname,
				Status:   model.FriendAccepted,
				AddedAt:  s.clock.Now(),
			})
		}
		return nil
	})
}

// RemoveFriend drops nickname from the caller's friend list. Dangling
// entries for deleted accounts can be removed too.
func (s *Service) RemoveFriend(ctx context.Context, id, nickname string) (*model.Account, error) {
	return s.update(ctx, id, func(_ []model.Account, a *model.Account) error {
		idx := a.FindFriend(nickname)
		if idx < 0 {
			return model.ErrFriendNotFound
		}
		a.Friends = append(a.Friends[:idx], a.Friends[idx+1:]...)
		return nil
	})
}

// IncomingRequests lists the accounts holding a pending entry for the caller
func (s *Service) IncomingRequests(ctx context.Context, id string) ([]model.Friend, error) {
	accounts, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexByID(accounts, id)
	if idx < 0 {
		return nil, model.ErrAccountNotFound
	}
	me := &accounts[idx]

	requests := []model.Friend{}
	for i := range accounts {
		other := &accounts[i]
		if other.ID == me.ID {
			continue
		}
		entry := other.FindFriend(me.Nickname)
		if entry >= 0 && other.Friends[entry].Status == model.FriendPending {
			requests = append(requests, model.Friend{
				Nickname: other.Nickname,
				Status:   model.FriendPending,
				AddedAt:  other.Friends[entry].AddedAt,
			})
		}
	}
	return requests, nil
}
