// Package config resolves meeple file locations and reads the TOML config.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// RedisURLEnv overrides the remote URL from the config file.
const RedisURLEnv = "MEEPLE_REDIS_URL"

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Remote  RemoteConfig  `toml:"remote"`
	Local   LocalConfig   `toml:"local"`
	Stats   StatsConfig   `toml:"stats"`
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
}

// RemoteConfig maps the remote document store settings.
type RemoteConfig struct {
	RedisURL  *string   `toml:"redis-url"`
	KeyPrefix *string   `toml:"key-prefix"`
	Timeout   *Duration `toml:"timeout"`
}

// LocalConfig maps the local cache settings.
type LocalConfig struct {
	DBPath *string `toml:"db-path"`
}

// StatsConfig maps statistics view settings.
type StatsConfig struct {
	LeaderboardSize *int `toml:"leaderboard-size"`
	PageSize        *int `toml:"page-size"`
	RecentGames     *int `toml:"recent-games"`
}

// ServerConfig maps the HTTP API settings.
type ServerConfig struct {
	Addr        *string  `toml:"addr"`
	CORSOrigins []string `toml:"cors-origins"`
}

// CatalogConfig maps the game catalog settings.
type CatalogConfig struct {
	Path *string `toml:"path"`
}

// Duration decodes TOML strings such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// RedisURL returns the remote URL, preferring the environment over the file.
func (c FileConfig) RedisURL() string {
	if v := strings.TrimSpace(os.Getenv(RedisURLEnv)); v != "" {
		return v
	}
	if c.Remote.RedisURL != nil {
		return strings.TrimSpace(*c.Remote.RedisURL)
	}
	return ""
}
