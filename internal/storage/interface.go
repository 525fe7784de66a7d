package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/gameaccounts/internal/model"
)

// ErrUnavailable is returned when the backing document cannot be read or
// written. Nothing is committed when it is returned from Mutate.
var ErrUnavailable = errors.New("account store unavailable")

// Backend persists the whole account collection as one document. There are
// deliberately no partial updates: AccountStore.Mutate is the only writer.
type Backend interface {
	// LoadAll returns every stored account. An empty store returns an empty
	// slice, not an error.
	LoadAll(ctx context.Context) ([]model.Account, error)

	// ReplaceAll overwrites the whole collection
	ReplaceAll(ctx context.Context, accounts []model.Account) error
}

// Flusher is implemented by backends that buffer writes and must persist
// them on shutdown.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Document is the wire form of the account collection shared by every
// backend: {"users": [...]}
type Document struct {
	Users []model.Account `json:"users"`
}

// EncodeDocument serializes accounts into the document format
func EncodeDocument(accounts []model.Account) ([]byte, error) {
	if accounts == nil {
		accounts = []model.Account{}
	}
	data, err := json.Marshal(Document{Users: accounts})
	if err != nil {
		return nil, fmt.Errorf("encode account document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses the document format. Empty input is an empty store.
func DecodeDocument(data []byte) ([]model.Account, error) {
	if len(data) == 0 {
		return []model.Account{}, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode account document: %w", err)
	}
	if doc.Users == nil {
		doc.Users = []model.Account{}
	}
	return doc.Users, nil
}
