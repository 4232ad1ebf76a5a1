package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/meeple/internal/config"
	"github.com/verte-zerg/meeple/internal/sessions"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# meeple configuration
# Uncomment a value to enable it. CLI flags override config values.

[remote]
# redis-url = "redis://localhost:6379/0"   # Remote store; %s overrides it
# key-prefix = %q                     # Key namespace for documents
# timeout = %q                          # Per-request timeout

[local]
# db-path = %q

[stats]
# leaderboard-size = %d     # Rows in per-game leaderboards
# page-size = %d            # Sessions per listing page
# recent-games = 5          # Recent games shown per player

[server]
# addr = %q
# cors-origins = ["http://localhost:3000"]

[catalog]
# path = %q   # One game name per line
`,
		config.RedisURLEnv,
		defaultKeyPrefix,
		defaultRemoteTimeout.String(),
		config.DefaultDBPath(),
		defaultLeaderboardSize,
		sessions.DefaultPerPage,
		defaultServerAddr,
		config.DefaultCatalogPath(),
	)
}
