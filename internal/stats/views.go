package stats

import (
	"math"
	"sort"

	"github.com/verte-zerg/meeple/internal/model"
)

// Ranking returns the players sorted by wins, then win rate, then games
// played, then name. The input is not modified.
func Ranking(players []model.PlayerStats) []model.PlayerStats {
	out := append([]model.PlayerStats(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.TotalGames != b.TotalGames {
			return a.TotalGames > b.TotalGames
		}
		return a.PlayerName < b.PlayerName
	})
	return out
}

// Leaderboard returns the top players of a game by wins. A non-positive
// limit returns every player.
func Leaderboard(gs model.GameStats, limit int) []model.LeaderboardEntry {
	out := make([]model.LeaderboardEntry, 0, len(gs.Players))
	for name, ps := range gs.Players {
		out = append(out, model.LeaderboardEntry{
			Name:       name,
			Wins:       ps.Wins,
			Total:      ps.TotalGames,
			Percentage: WinRate(ps.Wins, ps.TotalGames),
			BestScore:  ps.BestScore,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		return a.Name < b.Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Summarize totals the players' statistics and picks the record holders.
// Players without games do not count toward the mean win rate or achievements.
func Summarize(players []model.PlayerStats) model.Summary {
	sum := model.Summary{Players: len(players)}
	rateSum, active := 0, 0
	for i := range players {
		p := &players[i]
		sum.TotalGames += p.TotalGames
		sum.TotalPlayTime += p.TotalPlayTime
		if p.TotalGames == 0 {
			continue
		}
		active++
		rateSum += p.WinRate
		if sum.MostWins == nil || better(p.Wins, sum.MostWins.Value, p.PlayerName, sum.MostWins.PlayerName) {
			sum.MostWins = &model.Achievement{PlayerName: p.PlayerName, Value: p.Wins}
		}
		if sum.MostActive == nil || p.TotalGames > sum.MostActive.Value ||
			(p.TotalGames == sum.MostActive.Value && moreWins(players, p, sum.MostActive.PlayerName)) {
			sum.MostActive = &model.Achievement{PlayerName: p.PlayerName, Value: p.TotalGames}
		}
		if sum.BestWinRate == nil || p.WinRate > sum.BestWinRate.Value ||
			(p.WinRate == sum.BestWinRate.Value && moreGames(players, p, sum.BestWinRate.PlayerName)) {
			sum.BestWinRate = &model.Achievement{PlayerName: p.PlayerName, Value: p.WinRate}
		}
	}
	if active == 0 {
		return model.Summary{Players: len(players)}
	}
	sum.HasData = true
	sum.AverageWinRate = roundDiv(rateSum, active)
	sum.TotalHours = int(math.Round(float64(sum.TotalPlayTime) / 60))
	return sum
}

// better reports whether value beats the holder's, breaking ties by name.
func better(value, held int, name, holder string) bool {
	if value != held {
		return value > held
	}
	return name < holder
}

func moreWins(players []model.PlayerStats, p *model.PlayerStats, holder string) bool {
	h := find(players, holder)
	return better(p.Wins, h.Wins, p.PlayerName, holder)
}

func moreGames(players []model.PlayerStats, p *model.PlayerStats, holder string) bool {
	h := find(players, holder)
	return better(p.TotalGames, h.TotalGames, p.PlayerName, holder)
}

func find(players []model.PlayerStats, name string) model.PlayerStats {
	for _, p := range players {
		if p.PlayerName == name {
			return p
		}
	}
	return model.PlayerStats{}
}
