// Package httpdoc stores the account document behind a remote JSON endpoint
// that answers GET with {"users":[...]} and accepts the same body on POST.
package httpdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/storage"
)

// maxDocumentSize caps how much of a response body is read
const maxDocumentSize = 32 << 20

// Config holds the remote document endpoint settings
type Config struct {
	// Endpoint is the URL of the document, used for both GET and POST
	Endpoint string

	// Timeout bounds each request
	Timeout time.Duration

	// AuthToken, when set, is sent as a bearer token
	AuthToken string
}

// DefaultConfig returns default remote document settings
func DefaultConfig() Config {
	return Config{
		Endpoint: "http://localhost:3001/api/users",
		Timeout:  5 * time.Second,
	}
}

// Storage reads and replaces the account document over HTTP
type Storage struct {
	cfg    Config
	client *http.Client
}

// Ensure Storage implements the interface
var _ storage.Backend = (*Storage)(nil)

// New creates an HTTP document storage. A nil client gets one with the
// configured timeout.
func New(cfg Config, client *http.Client) (*Storage, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("document endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Storage{cfg: cfg, client: client}, nil
}

func (s *Storage) LoadAll(ctx context.Context) ([]model.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}
	return storage.DecodeDocument(body)
}

func (s *Storage) ReplaceAll(ctx context.Context, accounts []model.Account) error {
	data, err := storage.EncodeDocument(accounts)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = s.do(req)
	return err
}

func (s *Storage) do(req *http.Request) ([]byte, error) {
	if s.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.AuthToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, s.cfg.Endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: unexpected status %d", req.Method, s.cfg.Endpoint, resp.StatusCode)
	}
	return body, nil
}
