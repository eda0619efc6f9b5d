package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// clearEnv isolates a test from configuration exported by the surrounding shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "APP_ENV", "LOG_LEVEL", "DATABASE_DRIVER", "DATABASE_DSN", "JWT_SECRET", "JWT_TTL",
		"AUTH_ENFORCE_ADMIN_ROLE", "RABBITMQ_URL", "RABBITMQ_EXCHANGE", "REDIS_ADDR", "REDIS_PASSWORD",
		"REDIS_DB", "CACHE_TTL", "SEED", "ADMIN_EMAIL", "ADMIN_PASSWORD", "SUPER_ADMIN_EMAIL", "SUPER_ADMIN_PASSWORD",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(nil)

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.App.Port)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, zapcore.InfoLevel, cfg.App.LogLevel)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:storefront.db?_foreign_keys=on", cfg.Database.DSN)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTTTL)
	assert.False(t, cfg.Auth.EnforceAdminRole)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Equal(t, "catalog", cfg.RabbitMQ.Exchange)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.Seed.Enabled)
	assert.Equal(t, "admin@example.com", cfg.Seed.AdminEmail)
	assert.Equal(t, "superadmin@example.com", cfg.Seed.SuperAdminEmail)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=app dbname=catalog")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("AUTH_ENFORCE_ADMIN_ROLE", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SEED", "false")
	t.Setenv("SUPER_ADMIN_EMAIL", "root@example.com")
	t.Setenv("SUPER_ADMIN_PASSWORD", "r00t")

	cfg, err := config.Load(nil)

	require.NoError(t, err)
	assert.False(t, cfg.App.IsDevelopment())
	assert.Equal(t, zapcore.DebugLevel, cfg.App.LogLevel)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=app dbname=catalog", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.JWTTTL)
	assert.True(t, cfg.Auth.EnforceAdminRole)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.False(t, cfg.Seed.Enabled)
	assert.Equal(t, "root@example.com", cfg.Seed.SuperAdminEmail)
	assert.Equal(t, "r00t", cfg.Seed.SuperAdminPassword)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \":9090\"\nRABBITMQ_URL: amqp://guest:guest@mq:5672/\n"), 0o600))
	t.Setenv("APP_PORT", ":7070")

	cfg, err := config.Load([]string{"--config", path})

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.App.Port, "environment wins over the config file")
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQ.URL)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("ADMIN_PASSWORD=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ADMIN_PASSWORD") })

	cfg, err := config.Load(nil)

	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Seed.AdminPassword)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "oracle"}, nil, "DATABASE_DRIVER"},
		{"bad ttl", map[string]string{"JWT_TTL": "tomorrow"}, nil, "JWT_TTL"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, nil, "LOG_LEVEL"},
		{"production without secret", map[string]string{"APP_ENV": "production"}, nil, "JWT_SECRET"},
		{"missing config file", nil, []string{"--config", "/nonexistent/storefront.yaml"}, "config file"},
		{"unknown flag", nil, []string{"--verbose"}, "flags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load(tt.args)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
