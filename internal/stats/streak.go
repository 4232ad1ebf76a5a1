package stats

import (
	"sort"

	"github.com/verte-zerg/meeple/internal/model"
)

// chronological returns the sessions ordered by date ascending. Sessions on
// the same day keep creation order, then input order.
func chronological(sessions []model.Session) []model.Session {
	out := append([]model.Session(nil), sessions...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := dateKey(out[i]), dateKey(out[j])
		if a != b {
			return a < b
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// computeStreaks scans sessions in ascending date order. The current win
// streak counts back from the most recent session until the first non-win.
func computeStreaks(name string, ordered []model.Session) model.Streaks {
	var st model.Streaks
	wins, losses := 0, 0
	for _, s := range ordered {
		if s.Won(name) {
			wins++
			losses = 0
			if wins > st.LongestWinStreak {
				st.LongestWinStreak = wins
			}
			continue
		}
		losses++
		wins = 0
		if losses > st.LongestLossStreak {
			st.LongestLossStreak = losses
		}
	}
	for i := len(ordered) - 1; i >= 0 && ordered[i].Won(name); i-- {
		st.CurrentWinStreak++
	}
	return st
}

// Streaks computes a player's streaks over the sessions they took part in.
func Streaks(name string, sessions []model.Session) model.Streaks {
	var mine []model.Session
	for _, s := range sessions {
		if s.HasPlayer(name) {
			mine = append(mine, s)
		}
	}
	return computeStreaks(name, chronological(mine))
}
