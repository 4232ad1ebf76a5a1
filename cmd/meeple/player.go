package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/meeple/internal/model"
	"github.com/verte-zerg/meeple/internal/players"
	"github.com/verte-zerg/meeple/internal/stats"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Manage players",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a player",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runPlayerAddCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename a player everywhere",
		Args:  cobra.ExactArgs(2),
		RunE:  withApp(runPlayerRenameCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a player (recorded sessions are kept)",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runPlayerRmCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List players",
		Args:  cobra.NoArgs,
		RunE:  withApp(runPlayerListCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show a player's statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runPlayerShowCmd),
	})
	return cmd
}

func runPlayerAddCmd(cmd *cobra.Command, args []string, a *app) error {
	p, err := a.players.Create(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to add player: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s (id %s)\n", p.Name, p.ID)
	return err
}

func runPlayerRenameCmd(cmd *cobra.Command, args []string, a *app) error {
	id := model.ID(strings.TrimSpace(args[0]))
	changed, err := a.players.Rename(cmd.Context(), id, args[1])
	if err != nil {
		return fmt.Errorf("failed to rename player: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Renamed player %s to %s (%d sessions updated)\n", id, strings.TrimSpace(args[1]), changed)
	return err
}

func runPlayerRmCmd(cmd *cobra.Command, args []string, a *app) error {
	id := model.ID(strings.TrimSpace(args[0]))
	p, ok := a.players.GetByID(id)
	if !ok {
		return fmt.Errorf("failed to remove player %s: %w", id, players.ErrPlayerNotFound)
	}
	if err := a.players.Delete(cmd.Context(), p.ID); err != nil {
		return fmt.Errorf("failed to remove player %s: %w", id, err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", p.Name)
	return err
}

func runPlayerListCmd(cmd *cobra.Command, _ []string, a *app) error {
	list := a.players.All()
	if len(list) == 0 {
		logErrln("No players yet. Add one with: meeple player add <name>")
		return nil
	}
	for _, p := range list {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, p.Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runPlayerShowCmd(cmd *cobra.Command, args []string, a *app) error {
	p, ok := a.players.GetByName(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", players.ErrPlayerNotFound, args[0])
	}
	return stats.RenderPlayer(cmd.OutOrStdout(), a.agg.PlayerStats(p.Name))
}
