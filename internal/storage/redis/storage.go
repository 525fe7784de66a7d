package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/storage"
)

// Storage keeps the account document as a single JSON string in Redis
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Backend = (*Storage)(nil)

func (s *Storage) LoadAll(ctx context.Context) ([]model.Account, error) {
	data, err := s.client.Get(ctx, documentKey(s.cfg.KeyPrefix)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.Account{}, nil
		}
		return nil, err
	}
	return storage.DecodeDocument(data)
}

func (s *Storage) ReplaceAll(ctx context.Context, accounts []model.Account) error {
	data, err := storage.EncodeDocument(accounts)
	if err != nil {
		return err
	}

	// Document and revision move together
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, documentKey(s.cfg.KeyPrefix), data, 0)
		pipe.Incr(ctx, revisionKey(s.cfg.KeyPrefix))
		return nil
	})
	return err
}

// revision returns how many times the document has been replaced
func (s *Storage) revision(ctx context.Context) (int64, error) {
	rev, err := s.client.Get(ctx, revisionKey(s.cfg.KeyPrefix)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return rev, err
}
