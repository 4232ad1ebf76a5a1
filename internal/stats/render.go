package stats

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/meeple/internal/model"
)

const noData = "No data yet: record a session first."

// RenderRanking prints the player ranking table.
func RenderRanking(w io.Writer, ranking []model.PlayerStats) error {
	if !anyGames(ranking) {
		_, err := fmt.Fprintln(w, noData)
		return err
	}
	if _, err := fmt.Fprintln(w, "Ranking"); err != nil {
		return err
	}
	cols := []column{
		rightCol("#"), leftCol("Player"), rightCol("Games"), rightCol("Wins"), rightCol("Losses"),
		rightCol("Win %"), rightCol("Streak"), rightCol("Best"), textCol("Favorite"),
	}
	rows := make([][]string, 0, len(ranking))
	for i, p := range ranking {
		favorite := "-"
		if p.FavoriteGame != nil {
			favorite = p.FavoriteGame.Game
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.PlayerName,
			strconv.Itoa(p.TotalGames),
			strconv.Itoa(p.Wins),
			strconv.Itoa(p.Losses),
			fmt.Sprintf("%d%%", p.WinRate),
			strconv.Itoa(p.Streaks.CurrentWinStreak),
			strconv.Itoa(p.Streaks.LongestWinStreak),
			favorite,
		})
	}
	return writeLines(w, formatTable(cols, rows))
}

// RenderGames prints one row per played game.
func RenderGames(w io.Writer, games map[string]model.GameStats) error {
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, noData)
		return err
	}
	if _, err := fmt.Fprintln(w, "Games"); err != nil {
		return err
	}
	cols := []column{leftCol("Game"), rightCol("Plays"), leftCol("First"), leftCol("Last"), leftCol("Duration"), leftCol("Leader")}
	rows := make([][]string, 0, len(games))
	for _, name := range sortedKeys(games) {
		gs := games[name]
		leader := "-"
		if top := Leaderboard(gs, 1); len(top) > 0 && top[0].Wins > 0 {
			leader = fmt.Sprintf("%s (%d)", top[0].Name, top[0].Wins)
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(gs.TotalPlays),
			orDash(gs.FirstPlay),
			orDash(gs.LastPlay),
			durationRange(gs.MinDuration, gs.MaxDuration),
			leader,
		})
	}
	return writeLines(w, formatTable(cols, rows))
}

// RenderGameStats prints a game's totals and leaderboard.
func RenderGameStats(w io.Writer, name string, gs model.GameStats, limit int) error {
	if gs.TotalPlays == 0 {
		_, err := fmt.Fprintf(w, "No data for %q.\n", name)
		return err
	}
	lines := []string{
		name,
		fmt.Sprintf("Plays: %d", gs.TotalPlays),
		fmt.Sprintf("First played: %s", orDash(gs.FirstPlay)),
		fmt.Sprintf("Last played: %s", orDash(gs.LastPlay)),
		fmt.Sprintf("Duration: %s", durationRange(gs.MinDuration, gs.MaxDuration)),
		"",
	}
	if err := writeLines(w, lines); err != nil {
		return err
	}
	board := Leaderboard(gs, limit)
	cols := []column{rightCol("#"), leftCol("Player"), rightCol("Wins"), rightCol("Games"), rightCol("Win %"), rightCol("Best score")}
	rows := make([][]string, 0, len(board))
	for i, e := range board {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Name,
			strconv.Itoa(e.Wins),
			strconv.Itoa(e.Total),
			fmt.Sprintf("%d%%", e.Percentage),
			strconv.Itoa(e.BestScore),
		})
	}
	return writeLines(w, formatTable(cols, rows))
}

// RenderSummary prints overall totals and achievements.
func RenderSummary(w io.Writer, sum model.Summary) error {
	if !sum.HasData {
		_, err := fmt.Fprintln(w, noData)
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Players: %d", sum.Players),
		fmt.Sprintf("Games played (per player): %d", sum.TotalGames),
		fmt.Sprintf("Play time: %d min (~%d h)", sum.TotalPlayTime, sum.TotalHours),
		fmt.Sprintf("Average win rate: %d%%", sum.AverageWinRate),
		fmt.Sprintf("Most wins: %s", achievement(sum.MostWins, "")),
		fmt.Sprintf("Best win rate: %s", achievement(sum.BestWinRate, "%")),
		fmt.Sprintf("Most active: %s", achievement(sum.MostActive, " games")),
		"",
	}
	return writeLines(w, lines)
}

// RenderPlayer prints one player's profile.
func RenderPlayer(w io.Writer, p model.PlayerStats) error {
	if p.TotalGames == 0 {
		_, err := fmt.Fprintf(w, "No data for %s: no sessions recorded.\n", p.PlayerName)
		return err
	}
	lines := []string{
		p.PlayerName,
		fmt.Sprintf("Games: %d  Wins: %d  Losses: %d  Win rate: %d%%", p.TotalGames, p.Wins, p.Losses, p.WinRate),
		fmt.Sprintf("Play time: %d min (avg %d min, longest %d, shortest %d)", p.TotalPlayTime, p.AveragePlayTime, p.LongestGame, p.ShortestGame),
		fmt.Sprintf("Average score: %d", p.AverageScore),
		fmt.Sprintf("Unique games: %d  Last played: %s", p.UniqueGames, orDash(p.LastPlay)),
		fmt.Sprintf("Streaks: current %d, longest win %d, longest loss %d",
			p.Streaks.CurrentWinStreak, p.Streaks.LongestWinStreak, p.Streaks.LongestLossStreak),
	}
	if p.FavoriteGame != nil {
		lines = append(lines, fmt.Sprintf("Favorite game: %s (%d plays)", p.FavoriteGame.Game, p.FavoriteGame.Count))
	}
	if p.BestGame != nil {
		lines = append(lines, fmt.Sprintf("Best game: %s (%d/%d, %d%%)", p.BestGame.Game, p.BestGame.Wins, p.BestGame.Plays, p.BestGame.WinRate))
	}
	if p.FavoriteOpponent != nil {
		lines = append(lines, fmt.Sprintf("Favorite opponent: %s (%d games)", p.FavoriteOpponent.Name, p.FavoriteOpponent.Games))
	}
	lines = append(lines, "", "Recent games")
	if err := writeLines(w, lines); err != nil {
		return err
	}
	rows := make([][]string, 0, len(p.RecentGames))
	for _, g := range p.RecentGames {
		rows = append(rows, []string{g.Date, g.Game, g.Result, g.Winner})
	}
	return writeLines(w, formatTable([]column{leftCol("Date"), leftCol("Game"), leftCol("Result"), leftCol("Winner")}, rows))
}

// RenderSessions prints a session listing.
func RenderSessions(w io.Writer, sessions []model.Session) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	cols := []column{leftCol("ID"), leftCol("Date"), textCol("Game"), textCol("Players"), leftCol("Winner"), textCol("Scores"), rightCol("Min")}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			string(s.ID),
			s.Date,
			s.Game,
			strings.Join(s.Players, ", "),
			winnerLabel(s),
			scoreLabel(s),
			strconv.Itoa(s.Duration),
		})
	}
	return writeLines(w, formatTable(cols, rows))
}

func winnerLabel(s model.Session) string {
	for _, team := range s.Teams {
		if team.ID == s.Winner && team.Name != "" {
			return team.Name
		}
	}
	return orDash(s.Winner)
}

func scoreLabel(s model.Session) string {
	if len(s.TotalScores) == 0 {
		return "-"
	}
	keys := sortedKeys(s.TotalScores)
	sort.SliceStable(keys, func(i, j int) bool {
		return s.TotalScores[keys[i]] > s.TotalScores[keys[j]]
	})
	names := make(map[string]string, len(s.Teams))
	for _, team := range s.Teams {
		if team.Name != "" {
			names[team.ID] = team.Name
		}
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		label := k
		if n, ok := names[k]; ok {
			label = n
		}
		parts = append(parts, fmt.Sprintf("%s %d", label, s.TotalScores[k]))
	}
	return strings.Join(parts, ", ")
}

func achievement(a *model.Achievement, unit string) string {
	if a == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%d%s)", a.PlayerName, a.Value, unit)
}

func durationRange(minDur, maxDur int) string {
	switch {
	case maxDur == 0:
		return "-"
	case minDur == maxDur:
		return fmt.Sprintf("%d min", minDur)
	default:
		return fmt.Sprintf("%d-%d min", minDur, maxDur)
	}
}

func anyGames(players []model.PlayerStats) bool {
	for _, p := range players {
		if p.TotalGames > 0 {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
