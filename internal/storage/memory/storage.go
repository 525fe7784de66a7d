package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/storage"
)

// Storage keeps the account document in memory. When a snapshot path is
// set the document is read from it on creation and written back by Flush.
type Storage struct {
	mu       sync.RWMutex
	accounts []model.Account

	snapshotPath string
	dirty        bool
}

// Ensure Storage implements the interfaces
var (
	_ storage.Backend = (*Storage)(nil)
	_ storage.Flusher = (*Storage)(nil)
)

// New creates an empty in-memory storage
func New() *Storage {
	return &Storage{accounts: []model.Account{}}
}

// NewWithSnapshot creates an in-memory storage backed by a JSON snapshot
// file. A missing file is an empty store.
func NewWithSnapshot(path string) (*Storage, error) {
	s := &Storage{
		accounts:     []model.Account{},
		snapshotPath: path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	accounts, err := storage.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	s.accounts = accounts
	return s, nil
}

func (s *Storage) LoadAll(ctx context.Context) ([]model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneAccounts(s.accounts), nil
}

func (s *Storage) ReplaceAll(ctx context.Context, accounts []model.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = model.CloneAccounts(accounts)
	s.dirty = true
	return nil
}

// Flush writes the snapshot file if anything changed since the last flush
func (s *Storage) Flush(ctx context.Context) error {
	if s.snapshotPath == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	data, err := storage.EncodeDocument(s.accounts)
	if err != nil {
		return err
	}

	// Write then rename so a crash never leaves a truncated snapshot
	tmp, err := os.CreateTemp(filepath.Dir(s.snapshotPath), ".accounts-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.snapshotPath); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	s.dirty = false
	return nil
}
