// Package generator builds random demo sessions.
package generator

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/meeple/internal/model"
)

const (
	minRounds       = 3
	maxRounds       = 6
	maxRoundScore   = 20
	minDuration     = 15
	maxDuration     = 180
	nonScoringPct   = 0.3
	teamGamePct     = 0.15
	unknownDuration = 0.2
	expansionPct    = 0.1
)

// Generator produces randomized sessions.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate builds count sessions dated from start onward. Earlier games in
// the list are picked more often and earlier players win more often. Scoring
// sessions leave the winner empty so it is derived from the scores.
func (g *Generator) Generate(players, games []string, count int, start time.Time) []model.Session {
	if len(players) == 0 || len(games) == 0 || count <= 0 {
		return nil
	}
	gameWeights := descendingWeights(len(games))
	day := start
	result := make([]model.Session, 0, count)
	for i := 0; i < count; i++ {
		day = day.AddDate(0, 0, g.rnd.Intn(4))
		s := model.Session{
			Game:     games[g.pick(gameWeights)],
			Date:     day.Format(model.DateLayout),
			Players:  g.pickPlayers(players),
			GameType: model.Scoring,
			Duration: g.duration(),
		}
		if g.rnd.Float64() < expansionPct {
			s.Expansions = []string{"Expansion"}
		}
		if len(s.Players) >= 4 && g.rnd.Float64() < teamGamePct {
			g.makeTeams(&s)
		}
		if g.rnd.Float64() < nonScoringPct {
			s.GameType = model.NonScoring
			s.Winner = g.pickWinner(s, players)
		} else {
			s.Scores = g.scores(s, players)
		}
		result = append(result, s)
	}
	return result
}

func (g *Generator) pickPlayers(players []string) []string {
	n := 2
	if len(players) < n {
		n = len(players)
	}
	if extra := len(players) - n; extra > 0 {
		n += g.rnd.Intn(extra + 1)
	}
	perm := g.rnd.Perm(len(players))[:n]
	out := make([]string, 0, n)
	for _, idx := range perm {
		out = append(out, players[idx])
	}
	return out
}

func (g *Generator) makeTeams(s *model.Session) {
	half := len(s.Players) / 2
	s.IsTeamGame = true
	s.Teams = []model.Team{
		{ID: uuid.NewString(), Name: "Red", Players: append([]string(nil), s.Players[:half]...)},
		{ID: uuid.NewString(), Name: "Blue", Players: append([]string(nil), s.Players[half:]...)},
	}
}

// competitors returns the scoring units and each unit's skill weight.
func (g *Generator) competitors(s model.Session, players []string) ([]string, []float64) {
	skill := descendingWeights(len(players))
	weightOf := make(map[string]float64, len(players))
	for i, p := range players {
		weightOf[p] = skill[i]
	}
	if !s.IsTeamGame {
		weights := make([]float64, len(s.Players))
		for i, p := range s.Players {
			weights[i] = weightOf[p]
		}
		return s.Players, weights
	}
	units := make([]string, len(s.Teams))
	weights := make([]float64, len(s.Teams))
	for i, team := range s.Teams {
		units[i] = team.ID
		for _, p := range team.Players {
			weights[i] += weightOf[p]
		}
	}
	return units, weights
}

func (g *Generator) pickWinner(s model.Session, players []string) string {
	units, weights := g.competitors(s, players)
	return units[g.pick(weights)]
}

func (g *Generator) scores(s model.Session, players []string) map[string][]int {
	units, weights := g.competitors(s, players)
	rounds := minRounds + g.rnd.Intn(maxRounds-minRounds+1)
	out := make(map[string][]int, len(units))
	for i, unit := range units {
		bonus := int(weights[i] * 3)
		seq := make([]int, rounds)
		for r := range seq {
			seq[r] = g.rnd.Intn(maxRoundScore+1) + bonus
		}
		out[unit] = seq
	}
	return out
}

func (g *Generator) duration() int {
	if g.rnd.Float64() < unknownDuration {
		return 0
	}
	return minDuration + g.rnd.Intn(maxDuration-minDuration+1)
}

// pick selects an index with probability proportional to its weight.
func (g *Generator) pick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}

func descendingWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 + float64(n-i)/float64(n)
	}
	return weights
}
