package identity

import (
	"context"
	"errors"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/storage"
)

func strPtr(v string) *string { return &v }

// UpdateProfile tests

func (s *ServiceSuite) TestUpdateProfileChangesNicknameAndEmail() {
	alice := s.register("alice", "10.0.0.1")

	updated, err := s.service.UpdateProfile(s.ctx, alice.ID, ProfileUpdate{
		Nickname: strPtr("Alicia"),
		Email:    strPtr("alicia@example.com"),
	})
	s.Require().NoError(err)
	s.Equal("Alicia", updated.Nickname)
	s.Equal("alicia@example.com", updated.Email)
}

func (s *ServiceSuite) TestUpdateProfileSameNicknameDifferentCase() {
	alice := s.register("alice", "10.0.0.1")

	updated, err := s.service.UpdateProfile(s.ctx, alice.ID, ProfileUpdate{Nickname: strPtr("ALICE")})
	s.Require().NoError(err)
	s.Equal("ALICE", updated.Nickname)
}

func (s *ServiceSuite) TestUpdateProfileNicknameTaken() {
	alice := s.register("alice", "10.0.0.1")
	s.register("bob", "10.0.0.2")

	_, err := s.service.UpdateProfile(s.ctx, alice.ID, ProfileUpdate{Nickname: strPtr("Bob")})
	s.ErrorIs(err, model.ErrDuplicateNickname)

	got, err := s.service.Get(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", got.Nickname)
}

func (s *ServiceSuite) TestUpdateProfileRejectsUnroutableNickname() {
	alice := s.register("alice", "10.0.0.1")

	_, err := s.service.UpdateProfile(s.ctx, alice.ID, ProfileUpdate{Nickname: strPtr("al/ice")})
	s.ErrorIs(err, model.ErrInvalidNickname)

	_, err = s.service.UpdateProfile(s.ctx, alice.ID, ProfileUpdate{Nickname: strPtr("Me")})
	s.ErrorIs(err, model.ErrReservedNickname)
}

func (s *ServiceSuite) TestUpdateProfileUnknownAccount() {
	_, err := s.service.UpdateProfile(s.ctx, "missing", ProfileUpdate{Email: strPtr("")})
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// DeleteAccount tests

func (s *ServiceSuite) TestDeleteAccountLeavesDanglingFriendEntries() {
	alice := s.register("alice", "10.0.0.1")
	bob := s.register("bob", "10.0.0.2")
	_, err := s.service.AddFriend(s.ctx, alice.ID, "bob")
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteAccount(s.ctx, bob.ID))

	got, err := s.service.Get(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Friends, 1)
	s.Equal("bob", got.Friends[0].Nickname)

	_, err = s.service.Get(s.ctx, bob.ID)
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *ServiceSuite) TestDeleteAccountFreesAddress() {
	alice := s.register("alice", "10.0.0.1")
	s.Require().NoError(s.service.DeleteAccount(s.ctx, alice.ID))

	s.register("bob", "10.0.0.1")
}

func (s *ServiceSuite) TestDeleteAccountUnknown() {
	s.ErrorIs(s.service.DeleteAccount(s.ctx, "missing"), model.ErrAccountNotFound)
}

// RecordResult tests

func (s *ServiceSuite) TestRecordResultUpdatesWinRate() {
	alice := s.register("alice", "10.0.0.1")

	_, _ = s.service.RecordResult(s.ctx, alice.ID, model.OutcomeWin)
	_, _ = s.service.RecordResult(s.ctx, alice.ID, model.OutcomeLoss)
	got, err := s.service.RecordResult(s.ctx, alice.ID, model.OutcomeWin)
	s.Require().NoError(err)

	s.Equal(model.Stats{GamesPlayed: 3, Wins: 2, Losses: 1, WinRate: 67}, got.Stats)
}

func (s *ServiceSuite) TestRecordResultInvalidOutcome() {
	alice := s.register("alice", "10.0.0.1")

	_, err := s.service.RecordResult(s.ctx, alice.ID, model.Outcome("forfeit"))
	s.ErrorIs(err, model.ErrInvalidOutcome)
}

// FindByIP tests

func (s *ServiceSuite) TestFindByIP() {
	alice := s.register("alice", "10.0.0.1")

	got, err := s.service.FindByIP(s.ctx, "10.0.0.1")
	s.Require().NoError(err)
	s.Equal(alice.ID, got.ID)

	_, err = s.service.FindByIP(s.ctx, "10.0.0.2")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Store failure

func (s *ServiceSuite) TestStoreUnavailableSurfaces() {
	store := storage.New(failingBackend{}, s.service.logger)
	svc := New(store, s.clock, s.service.logger, Config{BcryptCost: s.service.bcryptCost})

	_, err := svc.ResolveDirect(s.ctx, Registration{Nickname: "alice", Password: "password123"})
	s.ErrorIs(err, storage.ErrUnavailable)
}

type failingBackend struct{}

func (failingBackend) LoadAll(_ context.Context) ([]model.Account, error) {
	return nil, errors.New("down")
}

func (failingBackend) ReplaceAll(_ context.Context, _ []model.Account) error {
	return errors.New("down")
}
