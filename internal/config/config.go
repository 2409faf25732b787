package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
	Catalog CatalogConfig `yaml:"catalog"`
	Sync    SyncConfig    `yaml:"sync"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// CatalogConfig points at the external music catalog. The client secret is
// only read from the environment so it never lands in a config file.
type CatalogConfig struct {
	BaseURL      string `yaml:"base_url"`
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"-"`
}

type SyncConfig struct {
	// WorkTimeoutSeconds bounds the external lookup per song.
	WorkTimeoutSeconds int `yaml:"work_timeout_seconds"`
	// MaxQueries caps the search fan-out per song.
	MaxQueries int `yaml:"max_queries"`
	// EventBuffer sizes the progress event channel.
	EventBuffer int `yaml:"event_buffer"`
}

// WorkTimeout returns the per-song lookup timeout.
func (c SyncConfig) WorkTimeout() time.Duration {
	return time.Duration(c.WorkTimeoutSeconds) * time.Second
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "tunesync.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Catalog: CatalogConfig{
			BaseURL:  "https://api.spotify.com",
			TokenURL: "https://accounts.spotify.com/api/token",
		},
		Sync: SyncConfig{
			WorkTimeoutSeconds: 30,
			MaxQueries:         8,
			EventBuffer:        16,
		},
	}

	if path := os.Getenv("TUNESYNC_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("TUNESYNC_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TUNESYNC_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TUNESYNC_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("TUNESYNC_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TUNESYNC_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if baseURL := os.Getenv("TUNESYNC_CATALOG_BASE_URL"); baseURL != "" {
		cfg.Catalog.BaseURL = baseURL
	}
	if tokenURL := os.Getenv("TUNESYNC_CATALOG_TOKEN_URL"); tokenURL != "" {
		cfg.Catalog.TokenURL = tokenURL
	}
	if clientID := os.Getenv("TUNESYNC_CATALOG_CLIENT_ID"); clientID != "" {
		cfg.Catalog.ClientID = clientID
	}
	cfg.Catalog.ClientSecret = os.Getenv("TUNESYNC_CATALOG_CLIENT_SECRET")

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
