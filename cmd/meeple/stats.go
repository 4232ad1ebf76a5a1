package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/meeple/internal/stats"
	"github.com/verte-zerg/meeple/internal/statsui"
)

var (
	statsWidth int
	statsColor bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "stats [ranking|games|game <name>|summary|activity]",
		Short:     "Show statistics",
		Args:      cobra.ArbitraryArgs,
		ValidArgs: []string{"ranking", "games", "game", "summary", "activity"},
		RunE:      withApp(runStatsCmd),
	}
	cmd.Flags().IntVar(&statsWidth, "width", 0, "chart width (default: terminal width)")
	cmd.Flags().BoolVar(&statsColor, "color", false, "force colored charts")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, args []string, a *app) error {
	view := "ranking"
	if len(args) > 0 {
		view = strings.ToLower(args[0])
	}
	out := cmd.OutOrStdout()
	switch view {
	case "ranking":
		return stats.RenderRanking(out, stats.Ranking(a.agg.AllPlayerStats()))
	case "games":
		return stats.RenderGames(out, a.agg.RecomputeAll())
	case "game":
		if len(args) < 2 {
			return fmt.Errorf("usage: meeple stats game <name>")
		}
		query := strings.Join(args[1:], " ")
		name, gs, ok := a.agg.GameStats(query)
		if !ok {
			return fmt.Errorf("no game matches %q", query)
		}
		if err := stats.RenderGameStats(out, name, gs, a.leaderboardSize()); err != nil {
			return err
		}
		if best, ok := a.agg.BestScore(name); ok {
			_, err := fmt.Fprintf(out, "\nBest score: %d by %s\n", best.Score, best.Player)
			return err
		}
		return nil
	case "summary":
		return stats.RenderSummary(out, stats.Summarize(a.agg.AllPlayerStats()))
	case "activity":
		return stats.RenderActivity(out, stats.MonthlyActivity(a.agg.Sessions()), statsWidth, statsColor)
	default:
		return fmt.Errorf("unknown stats view %q", view)
	}
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive stats dashboard",
		Args:  cobra.NoArgs,
		RunE:  withApp(runDashboardCmd),
	}
}

func runDashboardCmd(_ *cobra.Command, _ []string, a *app) error {
	model := statsui.NewModel(a.agg, statsui.Config{LeaderboardSize: a.leaderboardSize()})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}
