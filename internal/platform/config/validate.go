package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required when storage.backend=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q (got %q)", BackendMemory, BackendPostgres, c.Storage.Backend)
	}
	if c.Storage.IdempotencyTTL < 0 {
		return fmt.Errorf("storage.idempotency_ttl must be >= 0 (got %s)", c.Storage.IdempotencyTTL)
	}
	if c.Storage.RedisIdempotency && strings.TrimSpace(c.Redis.Addr) == "" {
		return fmt.Errorf("redis.addr is required when storage.redis_idempotency is enabled")
	}

	if err := c.Auth.validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Budget.validate(); err != nil {
		return fmt.Errorf("budget: %w", err)
	}
	if _, err := url.ParseRequestURI(c.Sharing.PublicBaseURL); err != nil {
		return fmt.Errorf("sharing.public_base_url: %w", err)
	}

	return nil
}

func (a *AuthConfig) validate() error {
	switch a.Mode {
	case AuthModeDev:
		return nil
	case AuthModeJWT:
		if a.Issuer == "" || a.Audience == "" || a.JWKSURL == "" {
			return fmt.Errorf("issuer, audience and jwks_url are required in %s mode", AuthModeJWT)
		}
		if a.ClockSkew < 0 {
			return fmt.Errorf("clock_skew must be >= 0 (got %s)", a.ClockSkew)
		}
		return nil
	default:
		return fmt.Errorf("mode must be %q or %q (got %q)", AuthModeJWT, AuthModeDev, a.Mode)
	}
}

func (b *BudgetConfig) validate() error {
	var err error
	if b.Limit, err = parseAmount("limit", b.LimitRaw); err != nil {
		return err
	}
	if b.PerLegRate, err = parseAmount("per_leg_rate", b.PerLegRateRaw); err != nil {
		return err
	}
	if b.NightlyRate, err = parseAmount("nightly_rate", b.NightlyRateRaw); err != nil {
		return err
	}
	return nil
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s must be a decimal amount (got %q): %w", name, raw, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s must be >= 0 (got %s)", name, d)
	}
	return d, nil
}
