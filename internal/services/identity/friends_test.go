package identity

import (
	"time"

	"github.com/mcoot/gameaccounts/internal/model"
)

func (s *ServiceSuite) TestAddFriendSucceeds() {
	alice := s.register("alice", "10.0.0.1")
	s.register("Bob", "10.0.0.2")

	got, err := s.service.AddFriend(s.ctx, alice.ID, "bob")
	s.Require().NoError(err)
	s.Require().Len(got.Friends, 1)
	s.Equal(model.Friend{Nickname: "Bob", Status: model.FriendPending, AddedAt: s.clock.Now()}, got.Friends[0])
}

func (s *ServiceSuite) TestAddFriendUnknownNickname() {
	alice := s.register("alice", "10.0.0.1")

	_, err := s.service.AddFriend(s.ctx, alice.ID, "ghost")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *ServiceSuite) TestAddFriendSelf() {
	alice := s.register("alice", "10.0.0.1")

	_, err := s.service.AddFriend(s.ctx, alice.ID, "ALICE")
	s.ErrorIs(err, model.ErrFriendSelf)
}

func (s *ServiceSuite) TestAddFriendTwice() {
	alice := s.register("alice", "10.0.0.1")
	s.register("bob", "10.0.0.2")
	_, _ = s.service.AddFriend(s.ctx, alice.ID, "bob")

	_, err := s.service.AddFriend(s.ctx, alice.ID, "Bob")
	s.ErrorIs(err, model.ErrFriendExists)
}

func (s *ServiceSuite) TestAcceptFriendMarksBothSides() {
	alice := s.register("alice", "10.0.0.1")
	bob := s.register("bob", "10.0.0.2")
	_, _ = s.service.AddFriend(s.ctx, alice.ID, "bob")

	incoming, err := s.service.IncomingRequests(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Require().Len(incoming, 1)
	s.Equal("alice", incoming[0].Nickname)

	s.clock.Advance(time.Minute)
	got, err := s.service.AcceptFriend(s.ctx, bob.ID, "alice")
	s.Require().NoError(err)
	s.Require().Len(got.Friends, 1)
	s.Equal(model.FriendAccepted, got.Friends[0].Status)

	a, _ := s.service.Get(s.ctx, alice.ID)
	s.Equal(model.FriendAccepted, a.Friends[0].Status)

	incoming, _ = s.service.IncomingRequests(s.ctx, bob.ID)
	s.Empty(incoming)
}

func (s *ServiceSuite) TestAcceptFriendWithoutRequest() {
	s.register("alice", "10.0.0.1")
	bob := s.register("bob", "10.0.0.2")

	_, err := s.service.AcceptFriend(s.ctx, bob.ID, "alice")
	s.ErrorIs(err, model.ErrFriendRequestNotFound)
}

func (s *ServiceSuite) TestRemoveFriend() {
	alice := s.register("alice", "10.0.0.1")
	s.register("bob", "10.0.0.2")
	_, _ = s.service.AddFriend(s.ctx, alice.ID, "bob")

	got, err := s.service.RemoveFriend(s.ctx, alice.ID, "BOB")
	s.Require().NoError(err)
	s.Empty(got.Friends)

	_, err = s.service.RemoveFriend(s.ctx, alice.ID, "bob")
	s.ErrorIs(err, model.ErrFriendNotFound)
}
