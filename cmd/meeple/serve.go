package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/meeple/internal/api"
	"github.com/verte-zerg/meeple/internal/generator"
)

var (
	serveAddr        string
	serveCORSOrigins []string

	seedCount int
)

var demoPlayers = []string{"Alice", "Bob", "Carol", "Dave"}

var demoGames = []string{"Azul", "Carcassonne", "Codenames", "Ticket to Ride", "Wingspan"}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only JSON statistics over HTTP",
		Args:  cobra.NoArgs,
		RunE:  withApp(runServeCmd),
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultServerAddr, "listen address")
	cmd.Flags().StringSliceVar(&serveCORSOrigins, "cors-origin", nil, "allowed CORS origins (default: any)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string, a *app) error {
	applyStringConfig(cmd, "addr", &serveAddr, a.cfg.Server.Addr)
	applyStringsConfig(cmd, "cors-origin", &serveCORSOrigins, a.cfg.Server.CORSOrigins)

	handler := api.NewHandler(a.sessions, a.players, a.agg, api.HandlerConfig{
		PerPage:         a.pageSize(),
		LeaderboardSize: a.leaderboardSize(),
	}, a.logger("api"))
	router := api.NewRouter(handler, serveCORSOrigins)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logErrf("Serving on %s (ctrl+c to stop)\n", serveAddr)
	return api.Serve(ctx, serveAddr, router, a.logger("http"))
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Record random demo sessions",
		Args:  cobra.NoArgs,
		RunE:  withApp(runSeedCmd),
	}
	cmd.Flags().IntVar(&seedCount, "count", defaultSeedCount, "number of sessions to generate")
	return cmd
}

func runSeedCmd(cmd *cobra.Command, _ []string, a *app) error {
	if seedCount <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	names := a.players.Names()
	if len(names) < 2 {
		for _, name := range demoPlayers {
			if _, ok := a.players.GetByName(name); ok {
				continue
			}
			if _, err := a.players.Create(ctx, name); err != nil {
				return fmt.Errorf("failed to add demo player %s: %w", name, err)
			}
		}
		names = a.players.Names()
	}
	games := a.catalog.Names()
	if len(games) == 0 {
		games = demoGames
	}

	start := time.Now().AddDate(0, 0, -2*seedCount)
	added := 0
	for _, s := range generator.New().Generate(names, games, seedCount, start) {
		if _, err := a.sessions.Add(ctx, s); err != nil {
			logErrf("skipping generated session: %v\n", err)
			continue
		}
		added++
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d demo sessions for %d players\n", added, len(names))
	return err
}
