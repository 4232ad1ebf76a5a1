package stats

import (
	"github.com/verte-zerg/meeple/internal/model"
)

// Report bundles every derived view computed from one snapshot of the sources.
type Report struct {
	Games    map[string]model.GameStats `json:"games"`
	Players  []model.PlayerStats        `json:"players"`
	Ranking  []model.PlayerStats        `json:"ranking"`
	Summary  model.Summary              `json:"summary"`
	Activity []model.MonthActivity      `json:"activity"`
}

// BuildReport recomputes all statistics.
func BuildReport(a *Aggregator) Report {
	sessions := a.validSessions()
	players := a.AllPlayerStats()
	return Report{
		Games:    ComputeGameStats(sessions),
		Players:  players,
		Ranking:  Ranking(players),
		Summary:  Summarize(players),
		Activity: MonthlyActivity(sessions),
	}
}
