// Package stats computes per-game and per-player statistics from recorded sessions.
package stats

import (
	"io"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/meeple/internal/catalog"
	"github.com/verte-zerg/meeple/internal/model"
)

// DefaultRecentGames is how many recent sessions PlayerStats lists.
const DefaultRecentGames = 5

// SessionSource provides the current session collection.
type SessionSource interface {
	All() []model.Session
}

// PlayerSource provides the current player directory.
type PlayerSource interface {
	All() []model.Player
}

// Aggregator recomputes statistics from its sources on every call. It keeps
// no state between calls.
type Aggregator struct {
	sessions SessionSource
	players  PlayerSource
	logger   *log.Logger

	// RecentGames caps PlayerStats.RecentGames.
	RecentGames int
}

// New creates an aggregator. players may be nil, in which case only
// session-derived views are available.
func New(sessions SessionSource, players PlayerSource, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Aggregator{
		sessions:    sessions,
		players:     players,
		logger:      logger,
		RecentGames: DefaultRecentGames,
	}
}

// RecomputeAll rebuilds the statistics of every game.
func (a *Aggregator) RecomputeAll() map[string]model.GameStats {
	return ComputeGameStats(a.validSessions())
}

// ComputeGameStats aggregates sessions per game name. Sessions are expected
// to be well formed.
func ComputeGameStats(sessions []model.Session) map[string]model.GameStats {
	out := make(map[string]model.GameStats)
	for _, s := range sessions {
		gs, ok := out[s.Game]
		if !ok {
			gs = model.GameStats{Players: make(map[string]model.PlayerGameStats)}
		}
		gs.TotalPlays++

		if day := dateKey(s); day != "" {
			if gs.FirstPlay == "" || day < gs.FirstPlay {
				gs.FirstPlay = day
			}
			if gs.LastPlay == "" || day > gs.LastPlay {
				gs.LastPlay = day
			}
		}

		// Unknown durations are recorded as 0 and stay out of min/max.
		if s.Duration > 0 {
			if gs.MinDuration == 0 || s.Duration < gs.MinDuration {
				gs.MinDuration = s.Duration
			}
			if s.Duration > gs.MaxDuration {
				gs.MaxDuration = s.Duration
			}
		}

		for _, name := range s.Players {
			ps := gs.Players[name]
			ps.TotalGames++
			if s.Won(name) {
				ps.Wins++
			}
			if score, ok := s.ScoreFor(name); ok && score > ps.BestScore {
				ps.BestScore = score
			}
			gs.Players[name] = ps
		}
		out[s.Game] = gs
	}
	return out
}

// GameStats looks a game up by exact, case-insensitive, normalized and
// finally unique partial name. It returns the matched name.
func (a *Aggregator) GameStats(name string) (string, model.GameStats, bool) {
	all := a.RecomputeAll()
	match, ok := catalog.Match(name, sortedKeys(all), true)
	if !ok {
		return "", model.GameStats{}, false
	}
	return match, all[match], true
}

// PlayedGames returns the names of all played games, sorted.
func (a *Aggregator) PlayedGames() []string {
	return sortedKeys(a.RecomputeAll())
}

// BestScore returns the highest single-session total recorded for a game.
func (a *Aggregator) BestScore(game string) (model.BestScore, bool) {
	_, gs, ok := a.GameStats(game)
	if !ok {
		return model.BestScore{}, false
	}
	best := model.BestScore{}
	for _, name := range sortedKeys(gs.Players) {
		if score := gs.Players[name].BestScore; score > best.Score {
			best = model.BestScore{Player: name, Score: score}
		}
	}
	return best, best.Score > 0
}

// TopPlayers returns the game's leaderboard.
func (a *Aggregator) TopPlayers(game string, limit int) []model.LeaderboardEntry {
	_, gs, ok := a.GameStats(game)
	if !ok {
		return nil
	}
	return Leaderboard(gs, limit)
}

// PlayerStats computes one player's statistics. A player without sessions
// gets zero values.
func (a *Aggregator) PlayerStats(name string) model.PlayerStats {
	var mine []model.Session
	for _, s := range a.validSessions() {
		if s.HasPlayer(name) {
			mine = append(mine, s)
		}
	}
	return playerStats(name, mine, a.RecentGames)
}

// AllPlayerStats computes statistics for every directory player, in directory order.
func (a *Aggregator) AllPlayerStats() []model.PlayerStats {
	if a.players == nil {
		return nil
	}
	sessions := a.validSessions()
	players := a.players.All()
	out := make([]model.PlayerStats, 0, len(players))
	for _, p := range players {
		var mine []model.Session
		for _, s := range sessions {
			if s.HasPlayer(p.Name) {
				mine = append(mine, s)
			}
		}
		out = append(out, playerStats(p.Name, mine, a.RecentGames))
	}
	return out
}

// FavoriteGames lists the games a player played most.
func (a *Aggregator) FavoriteGames(name string, limit int) []model.GameCount {
	var out []model.GameCount
	for game, gs := range a.RecomputeAll() {
		if ps, ok := gs.Players[name]; ok {
			out = append(out, model.GameCount{Game: game, Count: ps.TotalGames})
		}
	}
	sortGameCounts(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Sessions returns the well-formed sessions the aggregator works on.
func (a *Aggregator) Sessions() []model.Session {
	return a.validSessions()
}

// validSessions drops records without a game or players. They are logged
// and never abort the computation.
func (a *Aggregator) validSessions() []model.Session {
	if a.sessions == nil {
		return nil
	}
	all := a.sessions.All()
	out := make([]model.Session, 0, len(all))
	for _, s := range all {
		if strings.TrimSpace(s.Game) == "" || len(s.Players) == 0 {
			a.logger.Printf("warning: skipping malformed session %q", s.ID)
			continue
		}
		out = append(out, s)
	}
	return out
}

func playerStats(name string, sessions []model.Session, recent int) model.PlayerStats {
	ps := model.PlayerStats{
		PlayerName:    name,
		RecentGames:   []model.RecentGame{},
		GameBreakdown: []model.GameRecord{},
	}
	if len(sessions) == 0 {
		return ps
	}
	ordered := chronological(sessions)

	type perGame struct{ plays, wins int }
	games := make(map[string]*perGame)
	opponents := make(map[string]int)
	scoreSum, scored := 0, 0
	for _, s := range ordered {
		ps.TotalGames++
		won := s.Won(name)
		if won {
			ps.Wins++
		}
		ps.TotalPlayTime += s.Duration
		if s.Duration > ps.LongestGame {
			ps.LongestGame = s.Duration
		}
		if s.Duration > 0 && (ps.ShortestGame == 0 || s.Duration < ps.ShortestGame) {
			ps.ShortestGame = s.Duration
		}
		if day := dateKey(s); day > ps.LastPlay {
			ps.LastPlay = day
		}
		if score, ok := s.ScoreFor(name); ok {
			scoreSum += score
			scored++
		}
		g := games[s.Game]
		if g == nil {
			g = &perGame{}
			games[s.Game] = g
		}
		g.plays++
		if won {
			g.wins++
		}
		for _, other := range s.Players {
			if other != name {
				opponents[other]++
			}
		}
	}

	ps.Losses = ps.TotalGames - ps.Wins
	ps.WinRate = WinRate(ps.Wins, ps.TotalGames)
	ps.AveragePlayTime = roundDiv(ps.TotalPlayTime, ps.TotalGames)
	ps.AverageScore = roundDiv(scoreSum, scored)
	ps.UniqueGames = len(games)
	ps.Streaks = computeStreaks(name, ordered)

	for game, g := range games {
		ps.GameBreakdown = append(ps.GameBreakdown, model.GameRecord{
			Game:    game,
			Plays:   g.plays,
			Wins:    g.wins,
			WinRate: WinRate(g.wins, g.plays),
		})
	}
	sort.Slice(ps.GameBreakdown, func(i, j int) bool {
		a, b := ps.GameBreakdown[i], ps.GameBreakdown[j]
		if a.Plays != b.Plays {
			return a.Plays > b.Plays
		}
		return a.Game < b.Game
	})
	fav := ps.GameBreakdown[0]
	ps.FavoriteGame = &model.GameCount{Game: fav.Game, Count: fav.Plays}
	best := bestGame(ps.GameBreakdown)
	ps.BestGame = &best
	ps.FavoriteOpponent = favoriteOpponent(opponents)

	if recent <= 0 {
		recent = DefaultRecentGames
	}
	for i := len(ordered) - 1; i >= 0 && len(ps.RecentGames) < recent; i-- {
		s := ordered[i]
		result := "loss"
		if s.Won(name) {
			result = "win"
		}
		ps.RecentGames = append(ps.RecentGames, model.RecentGame{
			Game:   s.Game,
			Date:   s.Date,
			Winner: s.Winner,
			Result: result,
		})
	}
	return ps
}

// bestGame picks the highest win rate, then more plays, then more wins,
// then the alphabetically first game.
func bestGame(records []model.GameRecord) model.GameRecord {
	best := records[0]
	for _, r := range records[1:] {
		if betterGame(r, best) {
			best = r
		}
	}
	return best
}

func betterGame(a, b model.GameRecord) bool {
	ra := float64(a.Wins) / float64(a.Plays)
	rb := float64(b.Wins) / float64(b.Plays)
	if ra != rb {
		return ra > rb
	}
	if a.Plays != b.Plays {
		return a.Plays > b.Plays
	}
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	return a.Game < b.Game
}

func favoriteOpponent(counts map[string]int) *model.Opponent {
	var best *model.Opponent
	for name, games := range counts {
		if best == nil || games > best.Games || (games == best.Games && name < best.Name) {
			best = &model.Opponent{Name: name, Games: games}
		}
	}
	return best
}

func sortGameCounts(list []model.GameCount) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Game < list[j].Game
	})
}

// WinRate returns wins/total as a rounded integer percentage, 0 when total is 0.
func WinRate(wins, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(wins) * 100 / float64(total)))
}

func roundDiv(sum, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// dateKey returns the session date as YYYY-MM-DD, or the raw value when it
// does not parse.
func dateKey(s model.Session) string {
	if day := s.Day(); !day.IsZero() {
		return day.Format(model.DateLayout)
	}
	return strings.TrimSpace(s.Date)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
