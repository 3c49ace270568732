package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinJWTSecretLength is the shortest signing secret accepted for issuing tokens.
const MinJWTSecretLength = 32

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Notifier     NotifierConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name           string        `env:"APP_NAME" envDefault:"loan-service"`
	Env            string        `env:"APP_ENV" envDefault:"production"`
	Host           string        `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port           string        `env:"APP_PORT" envDefault:"8080"`
	Version        string        `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	CORSOrigins    string        `env:"CORS_ORIGINS" envDefault:"*"`
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"20"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string        `env:"POSTGRES_DSN"`
	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations   bool          `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleTime time.Duration `env:"POSTGRES_CONN_MAX_IDLE" envDefault:"30s"`
	ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFE" envDefault:"5m"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr             string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password         string        `env:"REDIS_PASSWORD"`
	DB               int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize         int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	DialTimeout      time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	OperationTimeout time.Duration `env:"REDIS_OP_TIMEOUT" envDefault:"2s"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret      string        `env:"AUTH_JWT_SECRET"`
	Issuer         string        `env:"AUTH_JWT_ISSUER" envDefault:"loan-service"`
	Audience       string        `env:"AUTH_JWT_AUDIENCE" envDefault:"loan-service-clients"`
	AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"60m"`
	SessionTTL     time.Duration `env:"AUTH_SESSION_TTL" envDefault:"1h"`
	BcryptCost     int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	AdminEmail     string        `env:"ADMIN_EMAIL"`
	AdminPassword  string        `env:"ADMIN_PASSWORD"`
}

// NotificationConfig points the API at the notification gRPC service.
type NotificationConfig struct {
	GRPCAddr        string        `env:"NOTIFY_GRPC_ADDR"`
	Timeout         time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	ApprovedMessage string        `env:"NOTIFY_APPROVED_MESSAGE" envDefault:"Your loan application has been approved."`
}

// NotifierConfig configures the stand-alone notification server.
type NotifierConfig struct {
	ListenAddr string `env:"NOTIFIER_LISTEN_ADDR" envDefault:":9090"`
}

// Load reads configuration from environment variables, applying defaults where possible.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("AUTH_ACCESS_TOKEN_TTL must be positive")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("AUTH_SESSION_TTL must be positive")
	}
	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsDevelopment reports whether internal error detail may be exposed.
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, "development")
}

// SecretUsable reports whether the JWT secret is long enough to sign tokens.
func (a AuthConfig) SecretUsable() bool {
	return len(a.JWTSecret) >= MinJWTSecretLength
}
