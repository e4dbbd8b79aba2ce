package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32    `mapstructure:"DB_MIN_CONNS"`
	AuthSecretKey      string   `mapstructure:"AUTH_SECRET_KEY"`
	AuthAlgorithm      string   `mapstructure:"AUTH_ALGORITHM"`
	AuthAudience       string   `mapstructure:"AUTH_AUDIENCE"`
	AuthIssuer         string   `mapstructure:"AUTH_ISSUER"`
	BookingServiceURL  string   `mapstructure:"BOOKING_SERVICE_URL"`
	BookingTimeoutSecs int      `mapstructure:"BOOKING_TIMEOUT_SECONDS"`
	EnforceUniqueEmail bool     `mapstructure:"ENFORCE_UNIQUE_EMAIL"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults. Auth values are insecure development defaults and must be
	// overridden in any real deployment.
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("AUTH_SECRET_KEY", "changeme")
	v.SetDefault("AUTH_ALGORITHM", "HS256")
	v.SetDefault("AUTH_AUDIENCE", "sentracare-users")
	v.SetDefault("AUTH_ISSUER", "sentracare-auth")
	v.SetDefault("BOOKING_SERVICE_URL", "http://localhost:8001")
	v.SetDefault("BOOKING_TIMEOUT_SECONDS", 10)
	v.SetDefault("ENFORCE_UNIQUE_EMAIL", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_SECRET_KEY")
	v.BindEnv("AUTH_ALGORITHM")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("BOOKING_SERVICE_URL")
	v.BindEnv("BOOKING_TIMEOUT_SECONDS")
	v.BindEnv("ENFORCE_UNIQUE_EMAIL")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// BookingTimeout returns the outbound booking-service call timeout.
func (c *Config) BookingTimeout() time.Duration {
	return time.Duration(c.BookingTimeoutSecs) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development
// the signing secret must be overridden and the algorithm pinned to an HMAC
// variant supported by the claim verifier.
func (c *Config) Validate() error {
	switch c.AuthAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("AUTH_ALGORITHM must be HS256, HS384, or HS512, got %q", c.AuthAlgorithm)
	}
	if !c.IsDev() && c.AuthSecretKey == "changeme" {
		return fmt.Errorf("AUTH_SECRET_KEY must be overridden when ENV=%q", c.Env)
	}
	if c.BookingTimeoutSecs <= 0 {
		return fmt.Errorf("BOOKING_TIMEOUT_SECONDS must be positive, got %d", c.BookingTimeoutSecs)
	}
	return nil
}
