// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :5000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN. When empty the server runs on the in-memory store (dev only).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the shared HS256 signing secret. Ignored when a JWT key pair is configured.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim set on issued tokens and required on verification.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim set on issued tokens and required on verification.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the token lifetime (e.g. "1h").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`

	// StripeSecretKey is the payment gateway API key. Empty disables payment intents and gateway verification.
	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`
	// StripeAPIBase is the gateway base URL; overridable for tests and local mocks.
	StripeAPIBase string `mapstructure:"STRIPE_API_BASE"`
	// PaymentCurrency is the ISO currency code sent to the gateway (lowercase).
	PaymentCurrency string `mapstructure:"PAYMENT_CURRENCY"`

	// CORSAllowedOrigins is a comma-separated list of browser origins allowed to call the API. "*" allows any.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint. Empty means no-op telemetry providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is reported as service.name in telemetry and as the service field in logs.
	ServiceName string `mapstructure:"SERVICE_NAME"`
	// LogLevel is the zap level (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":5000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "bistro-auth")
	v.SetDefault("JWT_AUDIENCE", "bistro-api")
	v.SetDefault("JWT_ACCESS_TTL", "1h")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_API_BASE", "https://api.stripe.com")
	v.SetDefault("PAYMENT_CURRENCY", "usd")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("SERVICE_NAME", "bistro-boss")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	hasPriv := strings.TrimSpace(cfg.JWTPrivateKey) != ""
	hasPub := strings.TrimSpace(cfg.JWTPublicKey) != ""
	if hasPriv != hasPub {
		return nil, errors.New("config: JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set together")
	}
	if !hasPriv && strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("config: JWT_SECRET or JWT_PRIVATE_KEY/JWT_PUBLIC_KEY must be set")
	}

	if cfg.DatabaseURL == "" && cfg.Env == "production" {
		return nil, errors.New("config: DATABASE_URL must be set when APP_ENV=production")
	}

	cfg.PaymentCurrency = strings.ToLower(strings.TrimSpace(cfg.PaymentCurrency))
	if cfg.PaymentCurrency == "" {
		cfg.PaymentCurrency = "usd"
	}

	return &cfg, nil
}

// UseKeyPair reports whether tokens are signed with an asymmetric key pair instead of JWT_SECRET.
func (c *Config) UseKeyPair() bool {
	return c != nil && strings.TrimSpace(c.JWTPrivateKey) != "" && strings.TrimSpace(c.JWTPublicKey) != ""
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// PaymentsEnabled reports whether a payment gateway key is configured.
func (c *Config) PaymentsEnabled() bool {
	return c != nil && strings.TrimSpace(c.StripeSecretKey) != ""
}

// AllowedOrigins splits CORSAllowedOrigins on commas, dropping blanks and trailing slashes.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
