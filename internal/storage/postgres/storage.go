// Package postgres keeps the account document in a single PostgreSQL row.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/storage"
	"github.com/mcoot/gameaccounts/internal/storage/postgres/migrations"
)

var gooseMu sync.Mutex

// Storage persists the account document in PostgreSQL
type Storage struct {
	pool *pgxpool.Pool
}

// Ensure Storage implements the interface
var _ storage.Backend = (*Storage)(nil)

// New connects to PostgreSQL, applies migrations and returns a Storage
func New(ctx context.Context, dsn string) (*Storage, error) {
	if err := RunMigrations(ctx, dsn); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Storage{pool: pool}, nil
}

// RunMigrations runs goose migrations on the given DSN
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) LoadAll(ctx context.Context) ([]model.Account, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM account_documents WHERE id = 1`).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return []model.Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select account document: %w", err)
	}
	return storage.DecodeDocument(body)
}

func (s *Storage) ReplaceAll(ctx context.Context, accounts []model.Account) error {
	data, err := storage.EncodeDocument(accounts)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO account_documents (id, body, revision, updated_at)
VALUES (1, $1::jsonb, 1, now())
ON CONFLICT (id) DO UPDATE SET
    body = EXCLUDED.body,
    revision = account_documents.revision + 1,
    updated_at = now()`,
		string(data))
	if err != nil {
		return fmt.Errorf("upsert account document: %w", err)
	}
	return nil
}
