package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/gameaccounts/internal/config"
	"github.com/mcoot/gameaccounts/internal/dependencies/clock"
	"github.com/mcoot/gameaccounts/internal/dependencies/random"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/oauth"
	"github.com/mcoot/gameaccounts/internal/services/session"
	"github.com/mcoot/gameaccounts/internal/storage"
	"github.com/mcoot/gameaccounts/internal/storage/httpdoc"
	"github.com/mcoot/gameaccounts/internal/storage/memory"
	"github.com/mcoot/gameaccounts/internal/storage/postgres"
	redisstorage "github.com/mcoot/gameaccounts/internal/storage/redis"
	"github.com/mcoot/gameaccounts/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Backend storage.Backend
	Store   *storage.AccountStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Identity *identity.Service
	Sessions *session.Manager
	Signer   *session.CookieSigner
	Broker   *oauth.Broker
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StorageType selects the backend (memory, redis, http, sqlite, postgres)
	// If empty, defaults to memory
	StorageType string
	// SnapshotPath persists the memory backend across restarts (optional)
	SnapshotPath string
	// RedisConfig is required if StorageType is redis
	RedisConfig *redisstorage.Config
	// HTTPConfig is required if StorageType is http
	HTTPConfig  *httpdoc.Config
	SQLitePath  string
	PostgresDSN string

	IdentityConfig identity.Config
	SessionConfig  session.Config
	// SessionSecret signs session cookies, at least 32 bytes
	SessionSecret []byte
	OAuthConfig   oauth.Config

	// HTTPClient is used for provider and document requests (optional)
	HTTPClient *http.Client
}

// FromConfig translates loaded server configuration into factory settings
func FromConfig(cfg config.Config, logger *slog.Logger) Config {
	providers := make(map[string]oauth.ProviderConfig)
	for name, p := range cfg.OAuth.Providers() {
		if p.ClientID == "" && p.ClientSecret == "" {
			continue
		}
		providers[name] = oauth.ProviderConfig{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURI:  p.RedirectURI,
			Scopes:       p.Scopes,
		}
	}

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.Storage.RedisURL
	if cfg.Storage.RedisKeyPrefix != "" {
		redisCfg.KeyPrefix = cfg.Storage.RedisKeyPrefix
	}

	return Config{
		Logger:       logger,
		StorageType:  cfg.Storage.Type,
		SnapshotPath: cfg.Storage.SnapshotPath,
		RedisConfig:  &redisCfg,
		HTTPConfig: &httpdoc.Config{
			Endpoint:  cfg.Storage.Endpoint,
			Timeout:   cfg.Storage.HTTPTimeout,
			AuthToken: cfg.Storage.AuthToken,
		},
		SQLitePath:     cfg.Storage.SQLitePath,
		PostgresDSN:    cfg.Storage.PostgresDSN,
		IdentityConfig: identity.Config{BcryptCost: cfg.Identity.BcryptCost},
		SessionConfig:  session.Config{Duration: cfg.Session.Duration},
		SessionSecret:  []byte(cfg.Session.Secret),
		OAuthConfig: oauth.Config{
			StateTTL:  cfg.OAuth.StateTTL,
			Timeout:   cfg.OAuth.Timeout,
			Providers: providers,
		},
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	app, err := newWithDependencies(backend, clk, rnd, cfg, logger)
	if err != nil {
		if closer, ok := backend.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return app, nil
}

func newBackend(ctx context.Context, cfg Config) (storage.Backend, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		if cfg.SnapshotPath != "" {
			return memory.NewWithSnapshot(cfg.SnapshotPath)
		}
		return memory.New(), nil
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case config.StorageHTTP:
		if cfg.HTTPConfig == nil {
			return nil, errors.New("HTTPConfig required when StorageType is http")
		}
		return httpdoc.New(*cfg.HTTPConfig, cfg.HTTPClient)
	case config.StorageSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case config.StoragePostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("invalid StorageType %q", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(backend storage.Backend, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	identityCfg := cfg.IdentityConfig
	if identityCfg.BcryptCost == 0 {
		identityCfg = identity.DefaultConfig()
	}

	store := storage.New(backend, logger)
	identityService := identity.New(store, clk, logger, identityCfg)
	sessions := session.New(identityService, clk, rnd, logger, cfg.SessionConfig)

	signer, err := session.NewCookieSigner(cfg.SessionSecret, clk)
	if err != nil {
		return nil, err
	}

	broker, err := oauth.New(cfg.OAuthConfig, identityService, sessions, clk, rnd, logger, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}

	return &App{
		Backend:  backend,
		Store:    store,
		Clock:    clk,
		Random:   rnd,
		Identity: identityService,
		Sessions: sessions,
		Signer:   signer,
		Broker:   broker,
	}, nil
}
