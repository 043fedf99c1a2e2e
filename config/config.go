package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	AppEnv         string `env:"APP_ENV, default=development"`
	AppPort        string `env:"APP_PORT, default=8080"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS, default=*"`
	LogLevel       string `env:"LOG_LEVEL, default=info"`

	DB      DBConfig
	Redis   RedisConfig
	NATS    NATSConfig
	Session SessionConfig

	BcryptCost int `env:"BCRYPT_COST, default=10"`
}

type DBConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver string `env:"DB_DRIVER, default=postgres"`
	// URL takes precedence over the discrete host settings when set.
	URL          string `env:"DATABASE_URL"`
	Host         string `env:"DB_HOST, default=localhost"`
	Port         string `env:"DB_PORT, default=5432"`
	User         string `env:"DB_USER, default=taskdesk"`
	Password     string `env:"DB_PASSWORD, default=taskdesk"`
	Name         string `env:"DB_NAME, default=taskdesk"`
	SQLitePath   string `env:"DB_SQLITE_PATH, default=taskdesk.db"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS, default=10"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=100"`
}

type RedisConfig struct {
	// Addr enables the Redis session store when non-empty.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type NATSConfig struct {
	// URL enables event publishing when non-empty.
	URL string `env:"NATS_URL"`
}

type SessionConfig struct {
	Secret     string        `env:"SESSION_SECRET, default=change-this-session-secret-in-production"`
	TTL        time.Duration `env:"SESSION_TTL, default=24h"`
	CookieName string        `env:"SESSION_COOKIE, default=taskdesk_session"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith processes the configuration from the given lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, err
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "sqlite" {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.Session.TTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	return cfg, nil
}

// IsProduction reports whether cookies should be marked secure.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PostgresDSN builds the connection string, normalizing the legacy postgres:// scheme.
func (c DBConfig) PostgresDSN() string {
	if c.URL != "" {
		if strings.HasPrefix(c.URL, "postgres://") {
			return "postgresql://" + strings.TrimPrefix(c.URL, "postgres://")
		}
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
	)
}
