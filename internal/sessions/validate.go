package sessions

import (
	"errors"
	"strings"
	"time"

	"github.com/verte-zerg/meeple/internal/model"
)

// Errors returned by the session store.
var (
	ErrGameRequired      = errors.New("game is required")
	ErrDateRequired      = errors.New("date is required")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD or RFC 3339")
	ErrPlayersRequired   = errors.New("at least one player is required")
	ErrDuplicatePlayer   = errors.New("player listed more than once")
	ErrWinnerRequired    = errors.New("winner is required")
	ErrInvalidGameType   = errors.New("game type must be scoring or non_scoring")
	ErrInvalidTeams      = errors.New("every player must belong to exactly one team")
	ErrNegativeDuration  = errors.New("duration must not be negative")
	ErrSessionNotFound   = errors.New("session not found")
	ErrEmptyName         = errors.New("player name must not be empty")
	ErrUnknownCompetitor = errors.New("winner and score keys must name a player or team of the session")
)

// Prepare validates a submitted session and fills in derived fields.
// The input is not modified.
func Prepare(in model.Session) (model.Session, error) {
	s := in.Clone()
	s.Game = strings.TrimSpace(s.Game)
	if s.Game == "" {
		return model.Session{}, ErrGameRequired
	}
	date, err := normalizeDate(s.Date)
	if err != nil {
		return model.Session{}, err
	}
	s.Date = date

	players := make([]string, 0, len(s.Players))
	seen := make(map[string]struct{}, len(s.Players))
	for _, p := range s.Players {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			return model.Session{}, ErrDuplicatePlayer
		}
		seen[key] = struct{}{}
		players = append(players, p)
	}
	if len(players) == 0 {
		return model.Session{}, ErrPlayersRequired
	}
	s.Players = players

	if s.GameType == "" {
		s.GameType = model.Scoring
	}
	if !s.GameType.Valid() {
		return model.Session{}, ErrInvalidGameType
	}
	if s.Duration < 0 {
		return model.Session{}, ErrNegativeDuration
	}
	s.Winner = strings.TrimSpace(s.Winner)
	s.Description = strings.TrimSpace(s.Description)

	if s.IsTeamGame {
		if err := checkTeams(s.Players, s.Teams); err != nil {
			return model.Session{}, err
		}
	} else {
		s.Teams = nil
	}

	switch s.GameType {
	case model.Scoring:
		if s.Scores, err = keyScores(s); err != nil {
			return model.Session{}, err
		}
		s.TotalScores = TotalScores(s.Scores)
		if s.Winner == "" {
			s.Winner = DeriveWinner(competitors(s), s.TotalScores)
		}
	case model.NonScoring:
		s.Scores = nil
		s.TotalScores = nil
	}
	if s.Winner == "" {
		return model.Session{}, ErrWinnerRequired
	}
	winner, ok := resolveCompetitor(s, s.Winner)
	if !ok {
		return model.Session{}, ErrUnknownCompetitor
	}
	s.Winner = winner
	return s, nil
}

// resolveCompetitor maps name onto the session's spelling of a player, or
// onto a team id when the name matches a team id or team name.
func resolveCompetitor(s model.Session, name string) (string, bool) {
	if s.IsTeamGame {
		for _, team := range s.Teams {
			if team.ID == name || (team.Name != "" && model.SameName(team.Name, name)) {
				return team.ID, true
			}
		}
	}
	for _, p := range s.Players {
		if model.SameName(p, name) {
			return p, true
		}
	}
	return "", false
}

// keyScores rekeys scores by resolved competitor and rejects keys outside the session.
func keyScores(s model.Session) (map[string][]int, error) {
	if len(s.Scores) == 0 {
		return nil, nil
	}
	out := make(map[string][]int, len(s.Scores))
	for name, rounds := range s.Scores {
		key, ok := resolveCompetitor(s, strings.TrimSpace(name))
		if !ok {
			return nil, ErrUnknownCompetitor
		}
		if _, dup := out[key]; dup {
			return nil, ErrDuplicatePlayer
		}
		out[key] = rounds
	}
	return out, nil
}

// TotalScores sums each player's round scores. Missing rounds contribute nothing.
func TotalScores(scores map[string][]int) map[string]int {
	if len(scores) == 0 {
		return nil
	}
	totals := make(map[string]int, len(scores))
	for name, rounds := range scores {
		sum := 0
		for _, v := range rounds {
			sum += v
		}
		totals[name] = sum
	}
	return totals
}

// DeriveWinner returns the first competitor, in order, holding the strictly highest total.
// Competitors without a total are ignored. Returns "" when nobody has a total.
func DeriveWinner(order []string, totals map[string]int) string {
	winner := ""
	best := 0
	for _, name := range order {
		v, ok := totals[name]
		if !ok {
			continue
		}
		if winner == "" || v > best {
			winner = name
			best = v
		}
	}
	return winner
}

// competitors lists the units scores are keyed by: team ids for team games, players otherwise.
func competitors(s model.Session) []string {
	if !s.IsTeamGame {
		return s.Players
	}
	order := make([]string, 0, len(s.Teams)+len(s.Players))
	for _, team := range s.Teams {
		order = append(order, team.ID)
	}
	// Team games may still record per-player scores.
	return append(order, s.Players...)
}

func checkTeams(players []string, teams []model.Team) error {
	if len(teams) == 0 {
		return ErrInvalidTeams
	}
	member := make(map[string]int, len(players))
	ids := make(map[string]struct{}, len(teams))
	for _, team := range teams {
		if strings.TrimSpace(team.ID) == "" {
			return ErrInvalidTeams
		}
		if _, ok := ids[team.ID]; ok {
			return ErrInvalidTeams
		}
		ids[team.ID] = struct{}{}
		for _, p := range team.Players {
			member[p]++
		}
	}
	if len(member) != len(players) {
		return ErrInvalidTeams
	}
	for _, p := range players {
		if member[p] != 1 {
			return ErrInvalidTeams
		}
	}
	return nil
}

func normalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrDateRequired
	}
	if t, err := time.Parse(model.DateLayout, raw); err == nil {
		return t.Format(model.DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(model.DateLayout), nil
	}
	return "", ErrInvalidDate
}
