package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// ErrMissingSecret is returned when no token signing secret is configured.
var ErrMissingSecret = errors.New("SECRET_KEY not found in environment variables")

// SupportedAlgorithms lists the HMAC signing algorithms accepted for tokens.
var SupportedAlgorithms = []string{"HS256", "HS384", "HS512"}

// DatabaseConfig selects the GORM driver and its DSN.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Reset  bool   `mapstructure:"reset"`
}

// RedisConfig points at the optional reservation cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SecurityConfig holds token signing settings.
type SecurityConfig struct {
	SecretKey          string  `mapstructure:"secret_key"`
	Algorithm          string  `mapstructure:"algorithm"`
	AccessTokenMinutes int     `mapstructure:"access_token_minutes"`
	LoginRateLimit     float64 `mapstructure:"login_rate_limit"`
	LoginRateBurst     int     `mapstructure:"login_rate_burst"`
}

// AccessTokenTTL returns the default lifetime of issued tokens.
func (s SecurityConfig) AccessTokenTTL() time.Duration {
	return time.Duration(s.AccessTokenMinutes) * time.Minute
}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Environment string         `mapstructure:"environment"`
	ServerPort  string         `mapstructure:"server_port"`
	SwaggerHost string         `mapstructure:"swagger_host"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Security    SecurityConfig `mapstructure:"security"`
}

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string]string{
	"environment":                   "APP_ENV",
	"server_port":                   "SERVER_PORT",
	"swagger_host":                  "SWAGGER_HOST",
	"database.driver":               "DB_DRIVER",
	"database.dsn":                  "DATABASE_URL",
	"database.reset":                "RESET_DB",
	"redis.addr":                    "REDIS_ADDR",
	"redis.password":                "REDIS_PASSWORD",
	"redis.db":                      "REDIS_DB",
	"security.secret_key":           "SECRET_KEY",
	"security.algorithm":            "JWT_ALGORITHM",
	"security.access_token_minutes": "ACCESS_TOKEN_EXPIRE_MINUTES",
	"security.login_rate_limit":     "LOGIN_RATE_LIMIT",
	"security.login_rate_burst":     "LOGIN_RATE_BURST",
}

// Load builds Config from the environment, reading a .env file first when one exists.
// A missing signing secret or an unsupported algorithm is an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Security.SecretKey) == "" {
		return ErrMissingSecret
	}
	c.Security.Algorithm = strings.ToUpper(c.Security.Algorithm)
	supported := false
	for _, alg := range SupportedAlgorithms {
		if c.Security.Algorithm == alg {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.Security.Algorithm)
	}
	if c.Security.AccessTokenMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.Security.AccessTokenMinutes)
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server_port", "8080")
	v.SetDefault("swagger_host", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "coworking.db")
	v.SetDefault("database.reset", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("security.secret_key", "")
	v.SetDefault("security.algorithm", "HS256")
	v.SetDefault("security.access_token_minutes", 30)
	v.SetDefault("security.login_rate_limit", 5)
	v.SetDefault("security.login_rate_burst", 10)
}
