package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/meeple/internal/model"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := New(rdb, "test", nil)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c, mr
}

func TestSessionDocuments(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	later, err := c.AddSession(ctx, model.Session{ID: "5", Game: "Azul", Date: "2024-03-02", Players: []string{"Ann"}, Winner: "Ann"})
	if err != nil {
		t.Fatalf("add session: %v", err)
	}
	if later.ID == "5" || later.ID.IsLocal() {
		t.Fatalf("expected remote-assigned id, got %q", later.ID)
	}
	earlier, err := c.AddSession(ctx, model.Session{Game: "Catan", Date: "2024-03-01", Players: []string{"Bob"}, Winner: "Bob"})
	if err != nil {
		t.Fatalf("add session: %v", err)
	}
	if !mr.Exists("test:sessions") {
		t.Fatalf("expected sessions hash under key prefix")
	}

	sessions, err := c.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != earlier.ID || sessions[1].ID != later.ID {
		t.Fatalf("expected date order, got %+v", sessions)
	}

	updated := later.Clone()
	updated.Winner = "Zed"
	updated.Players = []string{"Zed"}
	if err := c.UpdateSessions(ctx, []model.Session{updated}); err != nil {
		t.Fatalf("update sessions: %v", err)
	}
	sessions, err = c.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if sessions[1].Winner != "Zed" {
		t.Fatalf("expected updated winner, got %q", sessions[1].Winner)
	}

	if err := c.DeleteSession(ctx, earlier.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if err := c.DeleteSession(ctx, earlier.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSessionsSkipsUndecodable(t *testing.T) {
	c, mr := newTestClient(t)
	mr.HSet("test:sessions", "broken", "{not json")
	if _, err := c.AddSession(context.Background(), model.Session{Game: "Azul", Date: "2024-01-01", Players: []string{"Ann"}}); err != nil {
		t.Fatalf("add session: %v", err)
	}
	sessions, err := c.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected broken document to be skipped, got %d", len(sessions))
	}
}

func TestPlayerDocuments(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	bob, err := c.AddPlayer(ctx, "bob")
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	if _, err := c.AddPlayer(ctx, "Ann"); err != nil {
		t.Fatalf("add player: %v", err)
	}
	players, err := c.ListPlayers(ctx)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(players) != 2 || players[0].Name != "Ann" || players[1].Name != "bob" {
		t.Fatalf("expected case-insensitive name order, got %+v", players)
	}

	if err := c.UpdatePlayerName(ctx, bob.ID, "Bobby"); err != nil {
		t.Fatalf("update player: %v", err)
	}
	if err := c.UpdatePlayerName(ctx, "missing", "X"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	players, err = c.ListPlayers(ctx)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if players[1].Name != "Bobby" || players[1].CreatedAt.IsZero() {
		t.Fatalf("expected renamed player with creation time, got %+v", players[1])
	}

	if err := c.DeletePlayer(ctx, bob.ID); err != nil {
		t.Fatalf("delete player: %v", err)
	}
	if err := c.DeletePlayer(ctx, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{URL: ""}, nil); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := NewClient(context.Background(), Config{URL: "://nope"}, nil); err == nil {
		t.Fatalf("expected error for invalid url")
	}
}
