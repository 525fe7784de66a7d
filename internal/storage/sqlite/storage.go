// Package sqlite keeps the account document in a single SQLite row.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/storage"
	"github.com/mcoot/gameaccounts/internal/storage/sqlite/migrations"
)

// goose keeps its base filesystem and dialect in package state
var gooseMu sync.Mutex

// Storage persists the account document in SQLite
type Storage struct {
	sqlDB *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Backend = (*Storage)(nil)

// Open opens a SQLite database file and applies embedded migrations
func Open(ctx context.Context, path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := runMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Storage{sqlDB: sqlDB}, nil
}

func runMigrations(ctx context.Context, sqlDB *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Storage) LoadAll(ctx context.Context) ([]model.Account, error) {
	var body string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT body FROM account_documents WHERE id = 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select account document: %w", err)
	}
	return storage.DecodeDocument([]byte(body))
}

func (s *Storage) ReplaceAll(ctx context.Context, accounts []model.Account) error {
	data, err := storage.EncodeDocument(accounts)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO account_documents (id, body, revision, updated_at)
VALUES (1, ?, 1, ?)
ON CONFLICT(id) DO UPDATE SET
    body = excluded.body,
    revision = account_documents.revision + 1,
    updated_at = excluded.updated_at`,
		string(data), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert account document: %w", err)
	}
	return nil
}

// revision returns how many times the document has been written
func (s *Storage) revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT revision FROM account_documents WHERE id = 1`).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return rev, err
}
