package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verte-zerg/meeple/internal/model"
	"github.com/verte-zerg/meeple/internal/players"
	"github.com/verte-zerg/meeple/internal/sessions"
	"github.com/verte-zerg/meeple/internal/stats"
)

func newTestRouter(t *testing.T) (http.Handler, *sessions.Store) {
	t.Helper()
	ctx := context.Background()
	store := sessions.New(nil, nil, nil)
	dir := players.New(nil, nil, store, nil)
	for _, name := range []string{"Ann", "Bob", "Cid"} {
		if _, err := dir.Create(ctx, name); err != nil {
			t.Fatalf("create player: %v", err)
		}
	}
	list := []model.Session{
		{Game: "Ticket to Ride", Date: "2024-01-05", Players: []string{"Ann", "Bob"}, Scores: map[string][]int{"Ann": {40, 30}, "Bob": {20, 10}}},
		{Game: "Ticket to Ride", Date: "2024-02-05", Players: []string{"Ann", "Bob"}, GameType: model.NonScoring, Winner: "Bob"},
		{Game: "Chess", Date: "2024-03-01", Players: []string{"Ann", "Bob"}, GameType: model.NonScoring, Winner: "Ann"},
	}
	for _, s := range list {
		if _, err := store.Add(ctx, s); err != nil {
			t.Fatalf("add session: %v", err)
		}
	}
	h := NewHandler(store, dir, stats.New(store, dir, nil), HandlerConfig{PerPage: 2}, nil)
	return NewRouter(h, nil), store
}

func get(t *testing.T, router http.Handler, path string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("%s: expected JSON, got %q", path, ct)
	}
	if out != nil {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
	}
	return rec.Code
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)
	var body map[string]interface{}
	if code := get(t, router, "/health", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["status"] != "healthy" || body["sessions"] != float64(3) || body["players"] != float64(3) {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestGetSessionsPaginatesNewestFirst(t *testing.T) {
	router, _ := newTestRouter(t)
	var page sessions.Page
	if code := get(t, router, "/api/v1/sessions", &page); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if page.TotalItems != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Game != "Chess" {
		t.Fatalf("expected newest session first, got %s", page.Items[0].Game)
	}

	get(t, router, "/api/v1/sessions?game=ticket%20to%20ride&page=9&per_page=5", &page)
	if page.TotalItems != 2 || page.Page != 1 {
		t.Fatalf("expected filtered, clamped page, got %+v", page)
	}
}

func TestGetSession(t *testing.T) {
	router, store := newTestRouter(t)
	id := store.All()[0].ID
	var s model.Session
	if code := get(t, router, "/api/v1/sessions/"+string(id), &s); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if s.Winner != "Ann" || s.TotalScores["Ann"] != 70 {
		t.Fatalf("unexpected session %+v", s)
	}
	var errResp ErrorResponse
	if code := get(t, router, "/api/v1/sessions/999", &errResp); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if errResp.Code != http.StatusNotFound || errResp.Message != "session not found" {
		t.Fatalf("unexpected error body %+v", errResp)
	}
}

func TestGameEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	var game struct {
		Name      string          `json:"name"`
		Stats     model.GameStats `json:"stats"`
		BestScore model.BestScore `json:"bestScore"`
	}
	if code := get(t, router, "/api/v1/stats/games/ticket", &game); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if game.Name != "Ticket to Ride" || game.Stats.TotalPlays != 2 || game.BestScore.Player != "Ann" {
		t.Fatalf("unexpected game body %+v", game)
	}

	var board struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	get(t, router, "/api/v1/stats/games/Chess/leaderboard?limit=1", &board)
	if len(board.Leaderboard) != 1 || board.Leaderboard[0].Name != "Ann" {
		t.Fatalf("unexpected leaderboard %+v", board.Leaderboard)
	}

	if code := get(t, router, "/api/v1/stats/games/Monopoly", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown game, got %d", code)
	}
}

func TestRankingAndSummary(t *testing.T) {
	router, _ := newTestRouter(t)
	var ranking struct {
		Ranking []model.PlayerStats `json:"ranking"`
		Count   int                 `json:"count"`
	}
	get(t, router, "/api/v1/stats/ranking", &ranking)
	if ranking.Count != 3 || ranking.Ranking[0].PlayerName != "Ann" || ranking.Ranking[2].PlayerName != "Cid" {
		t.Fatalf("unexpected ranking %+v", ranking)
	}

	var sum model.Summary
	get(t, router, "/api/v1/stats/summary", &sum)
	if !sum.HasData || sum.TotalGames != 6 || sum.MostWins == nil || sum.MostWins.PlayerName != "Ann" {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestPlayerStats(t *testing.T) {
	router, _ := newTestRouter(t)
	var ps model.PlayerStats
	if code := get(t, router, "/api/v1/players/Bob/stats", &ps); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if ps.TotalGames != 3 || ps.Wins != 1 || ps.WinRate != 33 {
		t.Fatalf("unexpected stats %+v", ps)
	}
	if code := get(t, router, "/api/v1/players/Zed/stats", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}
