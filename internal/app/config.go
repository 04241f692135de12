package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage drivers.
const (
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Catalog   CatalogConfig
	Storage   StorageConfig
	Sessions  SessionsConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// CatalogConfig points at the remote product catalog.
type CatalogConfig struct {
	URL     string        `default:"https://fakestoreapi.com" usage:"Catalog API base URL" flag:"catalog-url"`
	Timeout time.Duration `default:"10s" usage:"Catalog request timeout" flag:"catalog-timeout"`
}

// StorageConfig selects where carts and orders are kept.
type StorageConfig struct {
	Driver      string `default:"memory" usage:"Storage driver: none, memory, sqlite, redis or postgres"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STOREFRONT_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisAddr   string `usage:"Redis address (STOREFRONT_STORAGE_REDIS_ADDR or REDIS_ADDR)" flag:"redis-addr"`
	RedisPrefix string `default:"storefront:" usage:"Prefix for Redis keys" flag:"redis-prefix"`
	SQLitePath  string `default:"storefront.db" usage:"SQLite database file" flag:"sqlite-path"`
}

// SessionsConfig controls how long idle per-client carts stay in memory.
type SessionsConfig struct {
	IdleTimeout   time.Duration `default:"30m" usage:"Drop carts not used for this long" flag:"session-idle-timeout"`
	EvictInterval time.Duration `default:"1m" usage:"How often idle carts are dropped" flag:"session-evict-interval"`
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files
// and flags, then applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected storage driver is fully configured.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverNone, DriverMemory, DriverSQLite:
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("redis address is required: set STOREFRONT_STORAGE_REDIS_ADDR or REDIS_ADDR")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required: set STOREFRONT_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Sessions.IdleTimeout <= 0 || c.Sessions.EvictInterval <= 0 {
		return errors.New("session idle timeout and evict interval must be positive")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
