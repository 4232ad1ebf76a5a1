package generator

import (
	"context"
	"testing"
	"time"

	"github.com/verte-zerg/meeple/internal/model"
	"github.com/verte-zerg/meeple/internal/sessions"
)

func TestGenerateProducesValidSessions(t *testing.T) {
	players := []string{"Ann", "Bob", "Cid", "Dee", "Eve"}
	games := []string{"Azul", "Catan", "Codenames"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	list := NewSeeded(42).Generate(players, games, 200, start)
	if len(list) != 200 {
		t.Fatalf("expected 200 sessions, got %d", len(list))
	}

	store := sessions.New(nil, nil, nil)
	prev := ""
	sawTeam, sawNonScoring := false, false
	for i, s := range list {
		if s.Date < prev {
			t.Fatalf("session %d: dates must not go backwards (%s < %s)", i, s.Date, prev)
		}
		prev = s.Date
		if s.Duration != 0 && (s.Duration < minDuration || s.Duration > maxDuration) {
			t.Fatalf("session %d: duration %d out of range", i, s.Duration)
		}
		if s.GameType == model.Scoring {
			for unit, rounds := range s.Scores {
				if len(rounds) < minRounds || len(rounds) > maxRounds {
					t.Fatalf("session %d: %s has %d rounds", i, unit, len(rounds))
				}
			}
		} else {
			sawNonScoring = true
		}
		sawTeam = sawTeam || s.IsTeamGame
		if _, err := store.Add(context.Background(), s); err != nil {
			t.Fatalf("session %d rejected: %v (%+v)", i, err, s)
		}
	}
	if !sawTeam || !sawNonScoring {
		t.Fatalf("expected a mix of session kinds (team=%v non-scoring=%v)", sawTeam, sawNonScoring)
	}
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewSeeded(7).Generate([]string{"Ann", "Bob"}, []string{"Chess"}, 20, start)
	b := NewSeeded(7).Generate([]string{"Ann", "Bob"}, []string{"Chess"}, 20, start)
	for i := range a {
		if a[i].Date != b[i].Date || a[i].Winner != b[i].Winner || a[i].Duration != b[i].Duration {
			t.Fatalf("session %d differs between identical seeds", i)
		}
	}
	if NewSeeded(1).Generate(nil, []string{"Chess"}, 5, start) != nil {
		t.Fatalf("expected nothing without players")
	}
}
