package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gameaccounts/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestLoadAllEmpty() {
	accounts, err := s.storage.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(accounts)
	s.Empty(accounts)
}

func (s *StorageSuite) TestReplaceAllThenLoadAll() {
	err := s.storage.ReplaceAll(s.ctx, []model.Account{
		{ID: "a1", Nickname: "alice", Friends: []model.Friend{}},
	})
	s.Require().NoError(err)

	accounts, err := s.storage.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 1)
	s.Equal("alice", accounts[0].Nickname)
}

func (s *StorageSuite) TestLoadAllReturnsCopies() {
	_ = s.storage.ReplaceAll(s.ctx, []model.Account{
		{ID: "a1", Nickname: "alice", Friends: []model.Friend{{Nickname: "bob", Status: model.FriendPending}}},
	})

	first, _ := s.storage.LoadAll(s.ctx)
	first[0].Nickname = "mallory"
	first[0].Friends[0].Status = model.FriendAccepted

	second, _ := s.storage.LoadAll(s.ctx)
	s.Equal("alice", second[0].Nickname)
	s.Equal(model.FriendPending, second[0].Friends[0].Status)
}

func (s *StorageSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.storage.LoadAll(ctx)
	s.ErrorIs(err, context.Canceled)
	s.ErrorIs(s.storage.ReplaceAll(ctx, nil), context.Canceled)
}

func (s *StorageSuite) TestFlushWithoutSnapshotIsNoop() {
	s.NoError(s.storage.Flush(s.ctx))
}

func (s *StorageSuite) TestSnapshotRoundTrip() {
	path := filepath.Join(s.T().TempDir(), "accounts.json")

	first, err := NewWithSnapshot(path)
	s.Require().NoError(err)
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(first.ReplaceAll(s.ctx, []model.Account{
		{ID: "a1", Nickname: "alice", CreatedAt: created, Friends: []model.Friend{}},
	}))
	s.Require().NoError(first.Flush(s.ctx))

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Contains(string(data), `"users"`)

	second, err := NewWithSnapshot(path)
	s.Require().NoError(err)
	accounts, err := second.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 1)
	s.Equal("alice", accounts[0].Nickname)
	s.True(created.Equal(accounts[0].CreatedAt))
}

func (s *StorageSuite) TestSnapshotCorruptFile() {
	path := filepath.Join(s.T().TempDir(), "accounts.json")
	s.Require().NoError(os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewWithSnapshot(path)
	s.Error(err)
}
