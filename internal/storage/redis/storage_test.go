package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/storage"
	"github.com/mcoot/gameaccounts/internal/testutil"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestLoadAllMissingKeyIsEmpty() {
	accounts, err := s.storage.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(accounts)
}

func (s *StorageSuite) TestReplaceAllStoresSingleDocument() {
	err := s.storage.ReplaceAll(s.ctx, []model.Account{
		{ID: "a1", Nickname: "alice", CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{ID: "a2", Nickname: "bob"},
	})
	s.Require().NoError(err)

	raw, err := s.mini.Get("gameaccounts:accounts:document")
	s.Require().NoError(err)
	s.Contains(raw, `"users":[`)

	accounts, err := s.storage.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.Equal("alice", accounts[0].Nickname)
}

func (s *StorageSuite) TestReplaceAllBumpsRevision() {
	_ = s.storage.ReplaceAll(s.ctx, nil)
	_ = s.storage.ReplaceAll(s.ctx, nil)

	rev, err := s.storage.revision(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), rev)
}

func (s *StorageSuite) TestKeyPrefix() {
	cfg := DefaultConfig()
	cfg.KeyPrefix = "other"
	other := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), cfg)
	defer other.Close()

	s.Require().NoError(other.ReplaceAll(s.ctx, []model.Account{{ID: "a1", Nickname: "alice"}}))
	s.True(s.mini.Exists("other:accounts:document"))
	s.False(s.mini.Exists("gameaccounts:accounts:document"))
}

func (s *StorageSuite) TestCorruptDocument() {
	s.Require().NoError(s.mini.Set("gameaccounts:accounts:document", "{nope"))

	_, err := s.storage.LoadAll(s.ctx)
	s.Error(err)
}

func (s *StorageSuite) TestServerDownSurfacesAsUnavailable() {
	store := storage.New(s.storage, testutil.NopLogger())
	s.mini.Close()

	_, err := store.List(s.ctx)
	s.ErrorIs(err, storage.ErrUnavailable)
}
