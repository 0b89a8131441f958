package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// RoutePolicyFile optionally overrides the built-in screen policy.
	RoutePolicyFile string `env:"ROUTE_POLICY_FILE"`
	// LoginRatePerMin bounds POST /login attempts per client IP.
	LoginRatePerMin int `env:"LOGIN_RATE_PER_MIN, default=20"`

	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Mongo   MongoConfig
	AMQP    AMQPConfig
	Audit   AuditConfig
}

type APIConfig struct {
	BaseURL string `env:"API_BASE_URL, required"`
	// Timeout of 0 leaves upstream calls bounded only by the request context.
	Timeout     time.Duration `env:"API_TIMEOUT,  default=0s"`
	PageSize    int           `env:"PAGE_SIZE,    default=10"`
	ExportLimit int           `env:"EXPORT_LIMIT, default=10000"`
}

type SessionConfig struct {
	Cookie string        `env:"SESSION_COOKIE, default=ppf_session"`
	TTL    time.Duration `env:"SESSION_TTL,    default=12h"`
	Secure bool          `env:"SESSION_SECURE, default=false"`
}

type RedisConfig struct {
	// Addr empty selects the in-memory session store and disables the page cache.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type CacheConfig struct {
	Enabled bool          `env:"PAGE_CACHE_ENABLED, default=true"`
	TTL     time.Duration `env:"PAGE_CACHE_TTL,     default=30s"`
}

type MongoConfig struct {
	// URI empty disables the audit repository and the activity screen.
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=ppf_admin"`
}

type AMQPConfig struct {
	URL   string `env:"AMQP_URL"`
	Queue string `env:"AMQP_QUEUE, default=ppf.audit"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsDevelopment reports whether ENV selects development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// PageCacheEnabled reports whether list pages are cached in Redis.
func (c *Config) PageCacheEnabled() bool {
	return c.Cache.Enabled && c.Redis.Addr != ""
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves the configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL %q must be an http(s) url", c.API.BaseURL)
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.API.PageSize)
	}
	if c.API.ExportLimit < c.API.PageSize {
		return fmt.Errorf("EXPORT_LIMIT %d is smaller than PAGE_SIZE %d", c.API.ExportLimit, c.API.PageSize)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}
