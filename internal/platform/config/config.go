package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Budget   BudgetConfig   `yaml:"budget"`
	Sharing  SharingConfig  `yaml:"sharing"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `yaml:"host"                env:"SERVER_HOST"                env-default:"0.0.0.0"`
	Port              int           `yaml:"port"                env:"PORT"                       env-default:"8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"SERVER_READ_HEADER_TIMEOUT" env-default:"5s"`
	ReadTimeout       time.Duration `yaml:"read_timeout"        env:"SERVER_READ_TIMEOUT"        env-default:"10s"`
	WriteTimeout      time.Duration `yaml:"write_timeout"       env:"SERVER_WRITE_TIMEOUT"       env-default:"30s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"        env:"SERVER_IDLE_TIMEOUT"        env-default:"60s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"    env:"SERVER_SHUTDOWN_TIMEOUT"    env-default:"10s"`
}

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// StorageConfig selects the persistence adapters.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`

	// RedisIdempotency stores idempotency records in Redis instead of the primary backend.
	RedisIdempotency bool `yaml:"redis_idempotency" env:"STORAGE_REDIS_IDEMPOTENCY" env-default:"false"`

	// IdempotencyTTL is how long a response stays replayable. Zero keeps records forever.
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"STORAGE_IDEMPOTENCY_TTL" env-default:"24h"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_URL"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// RedisConfig holds the Redis connection used when storage.redis_idempotency is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"     env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
}

const (
	AuthModeJWT = "jwt"
	AuthModeDev = "dev"
)

// AuthConfig configures request authentication.
//
// In jwt mode tokens are verified against a JWKS endpoint. Dev mode trusts the
// X-Debug-Subject header and must never be used in production.
type AuthConfig struct {
	Mode       string `yaml:"mode"        env:"AUTH_MODE"        env-default:"jwt"`
	DevSubject string `yaml:"dev_subject" env:"AUTH_DEV_SUBJECT"`

	Issuer   string `yaml:"issuer"   env:"JWT_ISSUER"`
	Audience string `yaml:"audience" env:"JWT_AUDIENCE"`
	JWKSURL  string `yaml:"jwks_url" env:"JWT_JWKS_URL"`

	ClockSkew              time.Duration `yaml:"clock_skew"                env:"JWT_CLOCK_SKEW"                env-default:"30s"`
	JWKSRefreshInterval    time.Duration `yaml:"jwks_refresh_interval"     env:"JWT_JWKS_REFRESH_INTERVAL"     env-default:"5m"`
	JWKSMinRefreshInterval time.Duration `yaml:"jwks_min_refresh_interval" env:"JWT_JWKS_MIN_REFRESH_INTERVAL" env-default:"10s"`
	HTTPTimeout            time.Duration `yaml:"http_timeout"              env:"JWT_HTTP_TIMEOUT"              env-default:"5s"`
}

// BudgetConfig holds the constants a trip budget is computed against.
// Amounts are decimal strings and are parsed during validation.
type BudgetConfig struct {
	LimitRaw       string `yaml:"limit"        env:"BUDGET_LIMIT"        env-default:"2000"`
	PerLegRateRaw  string `yaml:"per_leg_rate" env:"BUDGET_PER_LEG_RATE" env-default:"5"`
	NightlyRateRaw string `yaml:"nightly_rate" env:"BUDGET_NIGHTLY_RATE" env-default:"150"`

	Limit       decimal.Decimal `yaml:"-" env:"-"`
	PerLegRate  decimal.Decimal `yaml:"-" env:"-"`
	NightlyRate decimal.Decimal `yaml:"-" env:"-"`
}

// SharingConfig controls the links handed out for public trips.
type SharingConfig struct {
	PublicBaseURL string `yaml:"public_base_url" env:"SHARING_PUBLIC_BASE_URL" env-default:"http://localhost:5173"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
