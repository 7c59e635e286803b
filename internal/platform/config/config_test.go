package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  port: 9090
  shutdown_timeout: "5s"

storage:
  backend: postgres
  redis_idempotency: true
  idempotency_ttl: "1h"

database:
  dsn: "postgres://u:p@localhost:5432/trips"
  max_conns: 4

redis:
  addr: "localhost:6380"

auth:
  mode: jwt
  issuer: "https://issuer.test"
  audience: "trip-planner"
  jwks_url: "https://issuer.test/.well-known/jwks.json"
  clock_skew: "10s"

budget:
  limit: "3500.50"
  per_leg_rate: "7.25"

sharing:
  public_base_url: "https://trips.example.com"

log:
  level: debug
  format: text
`

func TestLoad_FromYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "default kept")
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.True(t, cfg.Storage.RedisIdempotency)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, time.Hour, cfg.Storage.IdempotencyTTL)
	assert.Equal(t, 10*time.Second, cfg.Auth.JWT().ClockSkew)
	assert.Equal(t, "trip-planner", cfg.Auth.JWT().Audience)
	assert.True(t, decimal.RequireFromString("3500.50").Equal(cfg.Budget.Limit))
	assert.True(t, decimal.RequireFromString("7.25").Equal(cfg.Budget.PerLegRate))
	assert.True(t, decimal.NewFromInt(150).Equal(cfg.Budget.NightlyRate), "default nightly rate")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "7070")
	t.Setenv("BUDGET_LIMIT", "100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, decimal.NewFromInt(100).Equal(cfg.Budget.Limit))
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("AUTH_MODE", "dev")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.True(t, decimal.NewFromInt(2000).Equal(cfg.Budget.Limit))
	assert.True(t, decimal.NewFromInt(5).Equal(cfg.Budget.PerLegRate))
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{Backend: BackendMemory},
		Auth:    AuthConfig{Mode: AuthModeDev},
		Budget:  BudgetConfig{LimitRaw: "2000", PerLegRateRaw: "5", NightlyRateRaw: "150"},
		Sharing: SharingConfig{PublicBaseURL: "http://localhost:5173"},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "sqlite" }},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Backend = BackendPostgres }},
		{name: "negative idempotency ttl", mutate: func(c *Config) { c.Storage.IdempotencyTTL = -time.Second }},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.RedisIdempotency = true }},
		{name: "jwt without issuer", mutate: func(c *Config) { c.Auth.Mode = AuthModeJWT }},
		{name: "unknown auth mode", mutate: func(c *Config) { c.Auth.Mode = "basic" }},
		{name: "negative limit", mutate: func(c *Config) { c.Budget.LimitRaw = "-1" }},
		{name: "non numeric rate", mutate: func(c *Config) { c.Budget.NightlyRateRaw = "lots" }},
		{name: "bad base url", mutate: func(c *Config) { c.Sharing.PublicBaseURL = "not a url" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, decimal.NewFromInt(150).Equal(cfg.Budget.NightlyRate))
}
