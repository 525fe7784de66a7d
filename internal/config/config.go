// Package config loads server configuration from a YAML file with
// ACCOUNTS_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "ACCOUNTS_"

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageHTTP     = "http"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the full server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
	Session  SessionConfig  `yaml:"session" envPrefix:"SESSION_"`
	OAuth    OAuthConfig    `yaml:"oauth" envPrefix:"OAUTH_"`
	Web      WebConfig      `yaml:"web" envPrefix:"WEB_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Identity IdentityConfig `yaml:"identity" envPrefix:"IDENTITY_"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// TrustProxy takes client addresses from X-Forwarded-For
	TrustProxy bool `yaml:"trust_proxy" env:"TRUST_PROXY"`
}

// StorageConfig selects and configures the account document backend
type StorageConfig struct {
	Type string `yaml:"type" env:"TYPE"`

	// memory
	SnapshotPath string `yaml:"snapshot_path" env:"SNAPSHOT_PATH"`

	// redis
	RedisURL       string `yaml:"redis_url" env:"REDIS_URL"`
	RedisKeyPrefix string `yaml:"redis_key_prefix" env:"REDIS_KEY_PREFIX"`

	// http
	Endpoint    string        `yaml:"endpoint" env:"ENDPOINT"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT"`
	AuthToken   string        `yaml:"auth_token" env:"AUTH_TOKEN"`

	// sqlite
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`

	// postgres
	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
}

// SessionConfig holds session lifetime and cookie signing settings
type SessionConfig struct {
	Duration      time.Duration `yaml:"duration" env:"DURATION"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
	// Secret signs session cookies, at least 32 bytes
	Secret string `yaml:"secret" env:"SECRET"`
	// SecureCookies sets the Secure flag on cookies
	SecureCookies bool `yaml:"secure_cookies" env:"SECURE_COOKIES"`
}

// OAuthConfig holds broker settings and per-provider credentials
type OAuthConfig struct {
	StateTTL time.Duration `yaml:"state_ttl" env:"STATE_TTL"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`

	GitHub  ProviderConfig `yaml:"github" envPrefix:"GITHUB_"`
	Discord ProviderConfig `yaml:"discord" envPrefix:"DISCORD_"`
	Google  ProviderConfig `yaml:"google" envPrefix:"GOOGLE_"`
}

// ProviderConfig holds one provider's client credentials
type ProviderConfig struct {
	ClientID     string   `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret string   `yaml:"client_secret" env:"CLIENT_SECRET"`
	RedirectURI  string   `yaml:"redirect_uri" env:"REDIRECT_URI"`
	Scopes       []string `yaml:"scopes" env:"SCOPES" envSeparator:","`
}

// Providers returns the configured providers by name
func (c OAuthConfig) Providers() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"github":  c.GitHub,
		"discord": c.Discord,
		"google":  c.Google,
	}
}

// WebConfig holds the browser-facing redirect targets
type WebConfig struct {
	DashboardURL string `yaml:"dashboard_url" env:"DASHBOARD_URL"`
	LoginURL     string `yaml:"login_url" env:"LOGIN_URL"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// IdentityConfig holds account settings
type IdentityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    45 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type:           StorageMemory,
			RedisURL:       "redis://localhost:6379",
			RedisKeyPrefix: "gameaccounts",
			HTTPTimeout:    5 * time.Second,
			SQLitePath:     "data/accounts.db",
		},
		Session: SessionConfig{
			Duration:      24 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		OAuth: OAuthConfig{
			StateTTL: 10 * time.Minute,
			Timeout:  10 * time.Second,
		},
		Web: WebConfig{
			DashboardURL: "/dashboard",
			LoginURL:     "/login",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Identity: IdentityConfig{
			BcryptCost: 10,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks settings that would otherwise fail at first use
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_url is required for redis storage"))
		}
	case StorageHTTP:
		if c.Storage.Endpoint == "" {
			errs = append(errs, errors.New("storage.endpoint is required for http storage"))
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for sqlite storage"))
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.type %q", c.Storage.Type))
	}

	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 bytes"))
	}
	if c.Session.Duration <= 0 {
		errs = append(errs, errors.New("session.duration must be positive"))
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("session.sweep_interval must be positive"))
	}

	for name, p := range c.OAuth.Providers() {
		if (p.ClientID == "") != (p.ClientSecret == "") {
			errs = append(errs, fmt.Errorf("oauth.%s needs both client_id and client_secret", name))
		}
		if p.ClientID != "" && p.RedirectURI == "" {
			errs = append(errs, fmt.Errorf("oauth.%s.redirect_uri is required", name))
		}
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, fmt.Errorf("invalid log.level %q", level)
	}
	return l, nil
}

// NewLogger builds the process logger from the log settings
func (c LogConfig) NewLogger() *slog.Logger {
	level, err := ParseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
