package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Token denylist backends.
const (
	DenylistNone   = "none"
	DenylistMemory = "memory"
	DenylistRedis  = "redis"
)

var (
	ErrSecretsNotDistinct = errors.New("JWT_SECRET and REFRESH_SECRET must differ")
	ErrInvalidExpiry      = errors.New("token expiries must be positive")
	ErrUnknownDriver      = errors.New("DB_DRIVER must be one of postgres, mysql, sqlite")
	ErrUnknownDenylist    = errors.New("TOKEN_DENYLIST must be one of none, memory, redis")
	ErrRedisAddrRequired  = errors.New("TOKEN_DENYLIST=redis requires REDIS_ADDR")
	ErrInvalidSweep       = errors.New("DENYLIST_SWEEP_INTERVAL must be positive")
)

// Config is the process configuration. It is loaded once at startup and not mutated afterwards.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver       string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         string `env:"DB_PORT" envDefault:"5432"`
	DBUser         string `env:"DB_USER" envDefault:"taskuser"`
	DBPassword     string `env:"DB_PASSWORD" envDefault:"taskpassword"`
	DBName         string `env:"DB_NAME" envDefault:"task_management"`
	DBSSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	DBPath         string `env:"DB_PATH" envDefault:"taskmanager.db"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`

	JWTSecret          string        `env:"JWT_SECRET,required,notEmpty"`
	RefreshSecret      string        `env:"REFRESH_SECRET,required,notEmpty"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"7d"`
	JWTIssuer          string        `env:"JWT_ISSUER" envDefault:"taskmanager-api"`

	// TokenDenylist selects where revoked tokens are kept. Empty means redis
	// when REDIS_ADDR is set and none otherwise.
	TokenDenylist         string        `env:"TOKEN_DENYLIST"`
	DenylistSweepInterval time.Duration `env:"DENYLIST_SWEEP_INTERVAL" envDefault:"1m"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load reads an optional .env file and the environment. It fails when a
// required secret is missing so the process never starts half-configured.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse(env.Options{})
}

// Parse parses the configuration using opts, which tests use to supply an
// environment map instead of the process environment.
func Parse(opts env.Options) (*Config, error) {
	if opts.FuncMap == nil {
		opts.FuncMap = map[reflect.Type]env.ParserFunc{}
	}
	opts.FuncMap[reflect.TypeOf(time.Duration(0))] = parseDuration

	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == c.RefreshSecret {
		return ErrSecretsNotDistinct
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		return ErrInvalidExpiry
	}
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownDriver, c.DBDriver)
	}

	if c.TokenDenylist == "" {
		c.TokenDenylist = DenylistNone
		if c.RedisAddr != "" {
			c.TokenDenylist = DenylistRedis
		}
	}
	switch c.TokenDenylist {
	case DenylistNone, DenylistMemory:
	case DenylistRedis:
		if c.RedisAddr == "" {
			return ErrRedisAddrRequired
		}
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownDenylist, c.TokenDenylist)
	}
	if c.DenylistSweepInterval <= 0 {
		return ErrInvalidSweep
	}
	return nil
}

// DenylistEnabled reports whether logout revokes tokens.
func (c *Config) DenylistEnabled() bool {
	return c.TokenDenylist != DenylistNone
}

// IsRelease reports whether the server runs in gin release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// parseDuration accepts Go durations ("15m", "168h") and whole days ("7d").
func parseDuration(value string) (any, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}
