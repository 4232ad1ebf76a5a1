package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/meeple/internal/config"
	"github.com/verte-zerg/meeple/internal/model"
)

func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRunCLI(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dbPath, args...)
	if err != nil {
		t.Fatalf("meeple %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestCLIRecordsSessionsAcrossRuns(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.RedisURLEnv, "")
	db := filepath.Join(t.TempDir(), "meeple.db")

	mustRunCLI(t, db, "player", "add", "Ann")
	mustRunCLI(t, db, "player", "add", "Bob")
	if _, err := runCLI(t, db, "player", "add", "ann"); err == nil {
		t.Fatalf("expected duplicate player to be rejected")
	}

	out := mustRunCLI(t, db, "session", "add", "--game", "Azul", "--date", "2024-05-01",
		"-p", "ann", "-p", "Bob", "-s", "Ann=10,20", "-s", "bob=5")
	if !strings.Contains(out, "Recorded session 1: Azul on 2024-05-01") {
		t.Fatalf("unexpected add output %q", out)
	}
	if _, err := runCLI(t, db, "session", "add", "--game", "Azul", "-p", "Zed", "--type", "non_scoring", "--winner", "Zed"); err == nil {
		t.Fatalf("expected unknown player to be rejected")
	}

	out = mustRunCLI(t, db, "session", "list")
	if !strings.Contains(out, "Azul") || !strings.Contains(out, "Page 1/1 (1 sessions)") {
		t.Fatalf("unexpected listing %q", out)
	}

	out = mustRunCLI(t, db, "stats", "game", "azu")
	if !strings.Contains(out, "Best score: 30 by Ann") {
		t.Fatalf("unexpected game stats %q", out)
	}

	out = mustRunCLI(t, db, "player", "rename", "2", "Robert")
	if !strings.Contains(out, "(1 sessions updated)") {
		t.Fatalf("unexpected rename output %q", out)
	}
	out = mustRunCLI(t, db, "stats", "ranking")
	if !strings.Contains(out, "Robert") || strings.Contains(out, "Bob") {
		t.Fatalf("expected renamed player in ranking, got %q", out)
	}

	mustRunCLI(t, db, "session", "rm", "1")
	out = mustRunCLI(t, db, "stats", "summary")
	if !strings.HasPrefix(out, "No data") {
		t.Fatalf("expected empty summary after delete, got %q", out)
	}
}

func TestParseScores(t *testing.T) {
	got, err := parseScores([]string{"Ann=1, 2,3", "Bob=4", "Ann=5"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got["Ann"]) != 4 || got["Ann"][3] != 5 || got["Bob"][0] != 4 {
		t.Fatalf("unexpected scores %v", got)
	}
	for _, bad := range []string{"Ann", "=1", "Ann=x"} {
		if _, err := parseScores([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseTeams(t *testing.T) {
	teams, err := parseTeams([]string{"Red: Ann, Bob", "Blue:Cid"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(teams) != 2 || teams[0].Name != "Red" || len(teams[0].Players) != 2 || teams[1].Players[0] != "Cid" {
		t.Fatalf("unexpected teams %+v", teams)
	}
	if teams[0].ID == "" || teams[0].ID == teams[1].ID {
		t.Fatalf("expected distinct team ids")
	}
	if _, err := parseTeams([]string{"Red:"}); err == nil {
		t.Fatalf("expected error for empty team")
	}
}

func TestCompetitorKeyPrefersTeams(t *testing.T) {
	teams := []model.Team{{ID: "t-1", Name: "Red", Players: []string{"Ann"}}}
	if got := competitorKey("red", teams, nil); got != "t-1" {
		t.Fatalf("expected team id, got %q", got)
	}
	if got := competitorKey("", teams, nil); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}

func TestWarningFilter(t *testing.T) {
	var buf bytes.Buffer
	w := logWriter(&buf, false, false)
	for _, line := range []string{
		"[sessions] loaded 3 sessions\n",
		"[sessions] warning: remote store not configured, using local cache\n",
		"[sessions] warning: failed to save local cache: disk full\n",
	} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if got := buf.String(); got != "[sessions] warning: failed to save local cache: disk full\n" {
		t.Fatalf("unexpected filtered output %q", got)
	}
	if logWriter(&buf, true, false) != &buf {
		t.Fatalf("expected verbose logging to pass everything through")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template should be valid TOML: %v", err)
	}
	if cfg.Remote.RedisURL != nil || cfg.Stats.PageSize != nil {
		t.Fatalf("template values should all be commented out")
	}
}
