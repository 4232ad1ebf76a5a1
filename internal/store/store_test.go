package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/meeple/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "meeple.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSessionsRoundTripPreservesOrder(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sessions := []model.Session{
		{
			ID:          "2",
			Game:        "Azul",
			Date:        "2024-02-01",
			Players:     []string{"Ann", "Bob"},
			GameType:    model.Scoring,
			Scores:      map[string][]int{"Ann": {10, 12}, "Bob": {8}},
			TotalScores: map[string]int{"Ann": 22, "Bob": 8},
			Winner:      "Ann",
			Duration:    40,
		},
		{
			ID:         "1",
			Game:       "Codenames",
			Date:       "2024-01-15",
			Players:    []string{"Ann", "Bob", "Cid", "Dee"},
			GameType:   model.NonScoring,
			Winner:     "team-1",
			IsTeamGame: true,
			Teams: []model.Team{
				{ID: "team-1", Name: "Red", Players: []string{"Ann", "Bob"}},
				{ID: "team-2", Name: "Blue", Players: []string{"Cid", "Dee"}},
			},
		},
	}
	if err := st.SaveSessions(ctx, sessions); err != nil {
		t.Fatalf("save sessions: %v", err)
	}
	loaded, err := st.LoadSessions(ctx)
	if err != nil {
		t.Fatalf("load sessions: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(loaded))
	}
	if loaded[0].ID != "2" || loaded[1].ID != "1" {
		t.Fatalf("order not preserved: %s, %s", loaded[0].ID, loaded[1].ID)
	}
	if loaded[0].TotalScores["Ann"] != 22 || len(loaded[0].Scores["Bob"]) != 1 {
		t.Fatalf("scores not preserved: %+v", loaded[0])
	}
	if len(loaded[1].Teams) != 2 || loaded[1].Teams[1].Players[0] != "Cid" {
		t.Fatalf("teams not preserved: %+v", loaded[1].Teams)
	}

	if err := st.SaveSessions(ctx, sessions[:1]); err != nil {
		t.Fatalf("save sessions: %v", err)
	}
	loaded, err = st.LoadSessions(ctx)
	if err != nil {
		t.Fatalf("load sessions: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected snapshot replace to leave 1 session, got %d", len(loaded))
	}
}

func TestPlayersRoundTripWithNextID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	players, nextID, err := st.LoadPlayers(ctx)
	if err != nil {
		t.Fatalf("load empty players: %v", err)
	}
	if len(players) != 0 || nextID != 0 {
		t.Fatalf("expected empty cache, got %d players next=%d", len(players), nextID)
	}

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := []model.Player{
		{ID: "1", Name: "Ann", CreatedAt: created},
		{ID: "0b6a1c1e-3f40-4f0e-9c55-6f0c2b2a7d11", Name: "Bob", CreatedAt: created.Add(time.Hour)},
	}
	if err := st.SavePlayers(ctx, in, 2); err != nil {
		t.Fatalf("save players: %v", err)
	}
	if err := st.SavePlayers(ctx, in, 3); err != nil {
		t.Fatalf("save players again: %v", err)
	}
	players, nextID, err = st.LoadPlayers(ctx)
	if err != nil {
		t.Fatalf("load players: %v", err)
	}
	if nextID != 3 {
		t.Fatalf("expected next id 3, got %d", nextID)
	}
	if len(players) != 2 || players[1].Name != "Bob" || !players[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected players: %+v", players)
	}
}
