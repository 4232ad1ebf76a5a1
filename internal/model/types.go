// Package model defines shared data structures.
package model

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for Session.Date.
const DateLayout = "2006-01-02"

// ID identifies a player or session. Remote ids are UUID strings, local ids are decimal integers.
type ID string

// IsLocal reports whether the id was allocated locally rather than by the remote store.
func (id ID) IsLocal() bool {
	_, ok := id.LocalNumber()
	return ok
}

// LocalNumber returns the numeric value of a locally allocated id.
func (id ID) LocalNumber() (int, bool) {
	if id == "" {
		return 0, false
	}
	n, err := strconv.Atoi(string(id))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// LocalID formats a locally allocated numeric id.
func LocalID(n int) ID {
	return ID(strconv.Itoa(n))
}

// GameType distinguishes sessions with round scores from winner-only sessions.
type GameType string

const (
	// Scoring sessions carry per-round scores.
	Scoring GameType = "scoring"
	// NonScoring sessions carry only a declared winner.
	NonScoring GameType = "non_scoring"
)

// Valid reports whether the game type is known.
func (t GameType) Valid() bool {
	return t == Scoring || t == NonScoring
}

// Player is a named participant.
type Player struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Team groups players in a team game.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

// Session is one recorded play of a game.
type Session struct {
	ID          ID               `json:"id"`
	Game        string           `json:"game"`
	Date        string           `json:"date"`
	Players     []string         `json:"players"`
	GameType    GameType         `json:"gameType"`
	Scores      map[string][]int `json:"scores,omitempty"`
	TotalScores map[string]int   `json:"totalScores,omitempty"`
	Winner      string           `json:"winner"`
	Duration    int              `json:"duration"`
	IsTeamGame  bool             `json:"isTeamGame"`
	Teams       []Team           `json:"teams,omitempty"`
	Description string           `json:"description,omitempty"`
	Expansions  []string         `json:"expansions,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Day parses the session date. Unparseable dates yield the zero time.
func (s Session) Day() time.Time {
	if t, err := time.Parse(DateLayout, s.Date); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s.Date); err == nil {
		return t
	}
	return time.Time{}
}

// HasPlayer reports whether name participated in the session.
func (s Session) HasPlayer(name string) bool {
	for _, p := range s.Players {
		if p == name {
			return true
		}
	}
	return false
}

// TeamOf returns the team the player belongs to.
func (s Session) TeamOf(name string) (Team, bool) {
	if !s.IsTeamGame {
		return Team{}, false
	}
	for _, team := range s.Teams {
		for _, p := range team.Players {
			if p == name {
				return team, true
			}
		}
	}
	return Team{}, false
}

// Won reports whether the player won the session, directly or as a member of the winning team.
func (s Session) Won(name string) bool {
	if s.Winner == "" || name == "" {
		return false
	}
	if s.Winner == name {
		return true
	}
	team, ok := s.TeamOf(name)
	if !ok {
		return false
	}
	return team.ID == s.Winner || (team.Name != "" && team.Name == s.Winner)
}

// ScoreFor returns the player's session total, falling back to their team's total.
func (s Session) ScoreFor(name string) (int, bool) {
	if v, ok := s.TotalScores[name]; ok {
		return v, true
	}
	if team, ok := s.TeamOf(name); ok {
		if v, ok := s.TotalScores[team.ID]; ok {
			return v, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	out := s
	out.Players = append([]string(nil), s.Players...)
	out.Expansions = append([]string(nil), s.Expansions...)
	if s.Scores != nil {
		out.Scores = make(map[string][]int, len(s.Scores))
		for k, v := range s.Scores {
			out.Scores[k] = append([]int(nil), v...)
		}
	}
	if s.TotalScores != nil {
		out.TotalScores = make(map[string]int, len(s.TotalScores))
		for k, v := range s.TotalScores {
			out.TotalScores[k] = v
		}
	}
	if s.Teams != nil {
		out.Teams = make([]Team, len(s.Teams))
		for i, team := range s.Teams {
			team.Players = append([]string(nil), team.Players...)
			out.Teams[i] = team
		}
	}
	return out
}

// SameName compares player names case-insensitively, ignoring surrounding whitespace.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
