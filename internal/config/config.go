package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Session  SessionConfig  `yaml:"session"`
	Invite   InviteConfig   `yaml:"invite"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects the storage backend
type StorageConfig struct {
	// Type is one of "memory", "redis" or "postgres"
	Type string `yaml:"type"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL             string        `yaml:"url"`
	PoolSize        int           `yaml:"pool_size"`
	MinIdleConns    int           `yaml:"min_idle_conns"`
	UserTTL         time.Duration `yaml:"user_ttl"`
	GameTTL         time.Duration `yaml:"game_ttl"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// SessionConfig holds login session configuration
type SessionConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// InviteConfig holds invite link configuration
type InviteConfig struct {
	// Secret signs invite tokens. If empty an ephemeral secret is
	// generated at startup and links stop working on restart.
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}

	if c.Redis.URL == "" {
		c.Redis.URL = "redis://localhost:6379/0"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 2
	}
	if c.Redis.UserTTL == 0 {
		c.Redis.UserTTL = 24 * time.Hour
	}
	if c.Redis.GameTTL == 0 {
		c.Redis.GameTTL = 24 * time.Hour
	}
	if c.Redis.NotificationTTL == 0 {
		c.Redis.NotificationTTL = time.Hour
	}

	if c.Postgres.MaxConns == 0 {
		c.Postgres.MaxConns = 10
	}
	if c.Postgres.MinConns == 0 {
		c.Postgres.MinConns = 2
	}

	if c.Session.Duration == 0 {
		c.Session.Duration = 24 * time.Hour
	}

	if c.Invite.TTL == 0 {
		c.Invite.TTL = 10 * time.Minute
	}
}

// DefaultConfig returns a configuration with all defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
