package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/meeple/internal/model"
	"github.com/verte-zerg/meeple/internal/players"
	"github.com/verte-zerg/meeple/internal/sessions"
	"github.com/verte-zerg/meeple/internal/stats"
)

var (
	sessionGame        string
	sessionDate        string
	sessionPlayers     []string
	sessionScores      []string
	sessionWinner      string
	sessionType        string
	sessionTeams       []string
	sessionDuration    int
	sessionDescription string
	sessionExpansions  []string

	listGame    string
	listPlayer  string
	listPage    int
	listPerPage int
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record, list and remove sessions",
	}
	cmd.AddCommand(newSessionAddCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a session",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runSessionRmCmd),
	})
	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE:  withApp(runSessionListCmd),
	}
	list.Flags().StringVar(&listGame, "game", "", "only sessions of this game")
	list.Flags().StringVar(&listPlayer, "player", "", "only sessions with this player")
	list.Flags().IntVar(&listPage, "page", 1, "page number")
	list.Flags().IntVar(&listPerPage, "per-page", sessions.DefaultPerPage, "sessions per page")
	cmd.AddCommand(list)
	return cmd
}

func newSessionAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a played session",
		Args:  cobra.NoArgs,
		RunE:  withApp(runSessionAddCmd),
	}
	cmd.Flags().StringVar(&sessionGame, "game", "", "game name")
	cmd.Flags().StringVar(&sessionDate, "date", "", "play date (YYYY-MM-DD, default today)")
	cmd.Flags().StringArrayVarP(&sessionPlayers, "player", "p", nil, "player name (repeatable)")
	cmd.Flags().StringArrayVarP(&sessionScores, "score", "s", nil, "round scores as name=1,2,3 (repeatable)")
	cmd.Flags().StringVar(&sessionWinner, "winner", "", "winner (derived from scores when omitted)")
	cmd.Flags().StringVar(&sessionType, "type", string(model.Scoring), "scoring or non_scoring")
	cmd.Flags().StringArrayVar(&sessionTeams, "team", nil, "team as Name:player1,player2 (repeatable)")
	cmd.Flags().IntVar(&sessionDuration, "duration", 0, "duration in minutes")
	cmd.Flags().StringVar(&sessionDescription, "description", "", "free-form notes")
	cmd.Flags().StringArrayVar(&sessionExpansions, "expansion", nil, "expansion used (repeatable)")
	if err := cmd.MarkFlagRequired("game"); err != nil {
		panic(err)
	}
	return cmd
}

func runSessionAddCmd(cmd *cobra.Command, _ []string, a *app) error {
	date := sessionDate
	if strings.TrimSpace(date) == "" {
		date = time.Now().Format(model.DateLayout)
	}
	in := model.Session{
		Game:        sessionGame,
		Date:        date,
		GameType:    model.GameType(strings.TrimSpace(sessionType)),
		Winner:      sessionWinner,
		Duration:    sessionDuration,
		Description: sessionDescription,
		Expansions:  sessionExpansions,
	}
	if a.catalog.Len() > 0 {
		in.Game = a.catalog.Resolve(in.Game)
	}

	teams, err := parseTeams(sessionTeams)
	if err != nil {
		return err
	}
	names := append([]string(nil), sessionPlayers...)
	if len(teams) > 0 {
		in.IsTeamGame = true
		in.Teams = teams
		if len(names) == 0 {
			for _, team := range teams {
				names = append(names, team.Players...)
			}
		}
	}
	in.Players, err = canonicalPlayers(a.players, names)
	if err != nil {
		return err
	}
	for i := range in.Teams {
		if in.Teams[i].Players, err = canonicalPlayers(a.players, in.Teams[i].Players); err != nil {
			return err
		}
	}

	scores, err := parseScores(sessionScores)
	if err != nil {
		return err
	}
	in.Scores = keyByCompetitor(scores, in.Teams, a.players)
	in.Winner = competitorKey(in.Winner, in.Teams, a.players)

	saved, err := a.sessions.Add(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Recorded session %s: %s on %s\n", saved.ID, saved.Game, saved.Date); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderSessions(cmd.OutOrStdout(), []model.Session{saved})
}

func runSessionRmCmd(cmd *cobra.Command, args []string, a *app) error {
	id := model.ID(strings.TrimSpace(args[0]))
	if err := a.sessions.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to remove session %s: %w", id, err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed session %s\n", id)
	return err
}

func runSessionListCmd(cmd *cobra.Command, _ []string, a *app) error {
	applyIntConfig(cmd, "per-page", &listPerPage, a.cfg.Stats.PageSize)
	list := sessions.Filter(a.sessions.All(), listGame, listPlayer)
	sessions.SortByDate(list, true)
	page := sessions.Paginate(list, listPage, listPerPage)
	if err := stats.RenderSessions(cmd.OutOrStdout(), page.Items); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d/%d (%d sessions)\n", page.Page, page.TotalPages, page.TotalItems)
	return err
}

// parseScores reads "name=1,2,3" entries into per-round scores.
func parseScores(entries []string) (map[string][]int, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string][]int, len(entries))
	for _, entry := range entries {
		name, raw, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --score %q (want name=1,2,3)", entry)
		}
		var rounds []int
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid score %q for %s: %w", part, name, err)
			}
			rounds = append(rounds, v)
		}
		out[name] = append(out[name], rounds...)
	}
	return out, nil
}

// parseTeams reads "Name:a,b" entries. Each team gets a fresh id.
func parseTeams(entries []string) ([]model.Team, error) {
	teams := make([]model.Team, 0, len(entries))
	for _, entry := range entries {
		name, raw, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --team %q (want Name:player1,player2)", entry)
		}
		team := model.Team{ID: uuid.NewString(), Name: name}
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				team.Players = append(team.Players, p)
			}
		}
		if len(team.Players) == 0 {
			return nil, fmt.Errorf("team %s has no players", name)
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// canonicalPlayers maps names onto directory spelling and rejects unknown players.
func canonicalPlayers(dir *players.Directory, names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, ok := dir.GetByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown player %q (add with: meeple player add %q)", name, name)
		}
		out = append(out, p.Name)
	}
	return out, nil
}

// competitorKey maps a team name to its id and a player name to directory spelling.
func competitorKey(name string, teams []model.Team, dir *players.Directory) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, team := range teams {
		if model.SameName(team.Name, name) {
			return team.ID
		}
	}
	if p, ok := dir.GetByName(name); ok {
		return p.Name
	}
	return name
}

func keyByCompetitor(scores map[string][]int, teams []model.Team, dir *players.Directory) map[string][]int {
	if len(scores) == 0 {
		return nil
	}
	out := make(map[string][]int, len(scores))
	for name, rounds := range scores {
		key := competitorKey(name, teams, dir)
		out[key] = append(out[key], rounds...)
	}
	return out
}
