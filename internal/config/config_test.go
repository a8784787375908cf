package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	cfg, err := Load()
	assert.ErrorIs(t, err, ErrMissingSecret)
	assert.Nil(t, cfg)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("JWT_ALGORITHM", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Security.SecretKey)
	assert.Equal(t, "HS256", cfg.Security.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Security.AccessTokenTTL())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.ServerPort)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("RESET_DB", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "HS512", cfg.Security.Algorithm)
	assert.Equal(t, 5*time.Minute, cfg.Security.AccessTokenTTL())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Database.Reset)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			Security: SecurityConfig{SecretKey: "k", Algorithm: "HS256", AccessTokenMinutes: 30},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "blank secret", mutate: func(c *Config) { c.Security.SecretKey = "   " }, wantErr: true},
		{name: "asymmetric algorithm", mutate: func(c *Config) { c.Security.Algorithm = "RS256" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.Security.AccessTokenMinutes = 0 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
