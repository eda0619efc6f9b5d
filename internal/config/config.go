// Package config loads service settings from flags, an optional config file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const developmentJWTSecret = "development-only-secret"

type AppConfig struct {
	Port     string
	Env      string
	LogLevel zapcore.Level
}

// IsDevelopment reports whether the service runs with development defaults.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type AuthConfig struct {
	JWTSecret        string
	JWTTTL           time.Duration
	EnforceAdminRole bool
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type SeedConfig struct {
	Enabled            bool
	AdminEmail         string
	AdminPassword      string
	SuperAdminEmail    string
	SuperAdminPassword string
}

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Seed     SeedConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:storefront.db?_foreign_keys=on")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("AUTH_ENFORCE_ADMIN_ROLE", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "catalog")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("SEED", true)
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("SUPER_ADMIN_EMAIL", "superadmin@example.com")
	v.SetDefault("SUPER_ADMIN_PASSWORD", "")
}

// Load reads configuration. args are the command line arguments without the program name.
// Precedence: environment, then the --config file, then defaults. A .env file in the
// working directory is loaded into the environment first when present.
func Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a YAML, JSON or .env config file")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", *configFile, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	var errs []error

	level, err := zapcore.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	jwtTTL, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		errs = append(errs, fmt.Errorf("JWT_TTL: %w", err))
	}
	cacheTTL, err := time.ParseDuration(v.GetString("CACHE_TTL"))
	if err != nil {
		errs = append(errs, fmt.Errorf("CACHE_TTL: %w", err))
	}

	cfg := Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      strings.ToLower(v.GetString("APP_ENV")),
			LogLevel: level,
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: AuthConfig{
			JWTSecret:        v.GetString("JWT_SECRET"),
			JWTTTL:           jwtTTL,
			EnforceAdminRole: v.GetBool("AUTH_ENFORCE_ADMIN_ROLE"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      cacheTTL,
		},
		Seed: SeedConfig{
			Enabled:            v.GetBool("SEED"),
			AdminEmail:         v.GetString("ADMIN_EMAIL"),
			AdminPassword:      v.GetString("ADMIN_PASSWORD"),
			SuperAdminEmail:    v.GetString("SUPER_ADMIN_EMAIL"),
			SuperAdminPassword: v.GetString("SUPER_ADMIN_PASSWORD"),
		},
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER: unsupported driver %q", cfg.Database.Driver))
	}
	if cfg.Auth.JWTSecret == "" {
		if cfg.App.IsDevelopment() {
			cfg.Auth.JWTSecret = developmentJWTSecret
		} else {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
