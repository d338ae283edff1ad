// Package config loads service configuration from a YAML file with
// PAYLINKR_* environment overrides.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/paylinkr/gatekeeper/core"
)

type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	Auth     Auth     `mapstructure:"auth"`
	Log      Log      `mapstructure:"log"`
}

type Server struct {
	Addr        string `mapstructure:"addr"`
	Environment string `mapstructure:"environment"`
}

func (s Server) Production() bool {
	return s.Environment == "production"
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type Redis struct {
	URL string `mapstructure:"url"`
}

type Auth struct {
	// Secret signs session tokens. There is no default: a missing
	// secret fails startup.
	Secret                string        `mapstructure:"secret"`
	SessionTTL            time.Duration `mapstructure:"session_ttl"`
	ChallengeTTL          time.Duration `mapstructure:"challenge_ttl"`
	RequireFreshChallenge bool          `mapstructure:"require_fresh_challenge"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// Load reads the config file at path (optional) and applies environment
// overrides, then validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server.addr", ":9000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("database.driver", "postgres")
	// Registered empty so environment overrides bind during Unmarshal.
	v.SetDefault("database.dsn", "")
	v.SetDefault("auth.secret", "")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("auth.session_ttl", 30*24*time.Hour)
	v.SetDefault("auth.challenge_ttl", 10*time.Minute)
	v.SetDefault("auth.require_fresh_challenge", false)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("PAYLINKR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.Secret == "" {
		return core.E(core.KindConfiguration, "auth.secret is required (set PAYLINKR_AUTH_SECRET)")
	}
	if c.Auth.SessionTTL <= 0 {
		return core.E(core.KindConfiguration, "auth.session_ttl must be positive")
	}
	if c.Database.DSN == "" {
		return core.E(core.KindConfiguration, "database.dsn is required")
	}
	return nil
}
