package config

import (
	"os"
	"path/filepath"
)

const appName = "meeple"

// File names inside the meeple directories.
const (
	configFile  = "config.toml"
	catalogFile = "games.txt"
	cacheFile   = appName + ".db"
)

// ConfigDir holds config.toml and the game catalog.
func ConfigDir() string {
	return filepath.Join(baseDir("XDG_CONFIG_HOME", ".config"), appName)
}

// DataDir holds the local session cache.
func DataDir() string {
	return filepath.Join(baseDir("XDG_DATA_HOME", ".local", "share"), appName)
}

// DefaultDBPath returns the default path for the SQLite cache.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), cacheFile)
}

// DefaultCatalogPath returns the default game catalog path.
func DefaultCatalogPath() string {
	return filepath.Join(ConfigDir(), catalogFile)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), configFile)
}

// baseDir reads an XDG base directory variable. Relative values are ignored
// as the XDG base directory rules require; the home fallback is used instead.
func baseDir(env string, homeRel ...string) string {
	if v := os.Getenv(env); v != "" && filepath.IsAbs(v) {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, homeRel...)...)
}
