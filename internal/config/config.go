package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Default organization selection policies, applied when a request carries no
// organization hint.
const (
	// DefaultOrgFirst selects the user's earliest accepted membership.
	DefaultOrgFirst = "first"
	// DefaultOrgNone rejects the request.
	DefaultOrgNone = "none"
)

type Config struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"dana"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"danapassword"`
	DBName     string `env:"DB_NAME" envDefault:"dana_ai"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"default-jwt-secret-change-me"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`

	CacheDriver string        `env:"CACHE_DRIVER" envDefault:"memory"`
	CacheSize   int           `env:"CACHE_SIZE" envDefault:"1024"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	DefaultOrganizationPolicy string        `env:"DEFAULT_ORGANIZATION_POLICY" envDefault:"first"`
	InviteTTL                 time.Duration `env:"INVITE_TTL" envDefault:"168h"`
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown enumerated values.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CacheDriver {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unsupported CACHE_DRIVER %q", c.CacheDriver)
	}
	switch c.DefaultOrganizationPolicy {
	case DefaultOrgFirst, DefaultOrgNone:
	default:
		return fmt.Errorf("unsupported DEFAULT_ORGANIZATION_POLICY %q", c.DefaultOrganizationPolicy)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive")
	}
	return nil
}

// RedisAddr returns host:port for the redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
