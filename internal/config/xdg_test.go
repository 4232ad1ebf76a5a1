package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultPathsFollowXDG(t *testing.T) {
	cfgHome := t.TempDir()
	dataHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_DATA_HOME", dataHome)

	if got, want := DefaultConfigPath(), filepath.Join(cfgHome, "meeple", "config.toml"); got != want {
		t.Fatalf("config path: expected %q, got %q", want, got)
	}
	if got, want := DefaultCatalogPath(), filepath.Join(cfgHome, "meeple", "games.txt"); got != want {
		t.Fatalf("catalog path: expected %q, got %q", want, got)
	}
	if got, want := DefaultDBPath(), filepath.Join(dataHome, "meeple", "meeple.db"); got != want {
		t.Fatalf("db path: expected %q, got %q", want, got)
	}
}

func TestRelativeXDGValueIsIgnored(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "relative/data")

	if got, want := DataDir(), filepath.Join(home, ".local", "share", "meeple"); got != want {
		t.Fatalf("expected home fallback %q, got %q", want, got)
	}
}
