package config

import "time"

// JWTConfig configures JWT verification against a JWKS endpoint.
type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string

	ClockSkew              time.Duration
	JWKSRefreshInterval    time.Duration
	JWKSMinRefreshInterval time.Duration

	HTTPTimeout time.Duration
}

// JWT returns the verifier settings of a jwt-mode auth section.
func (a AuthConfig) JWT() JWTConfig {
	return JWTConfig{
		Issuer:                 a.Issuer,
		Audience:               a.Audience,
		JWKSURL:                a.JWKSURL,
		ClockSkew:              a.ClockSkew,
		JWKSRefreshInterval:    a.JWKSRefreshInterval,
		JWKSMinRefreshInterval: a.JWKSMinRefreshInterval,
		HTTPTimeout:            a.HTTPTimeout,
	}
}
