// Package main provides the CLI entrypoint for meeple.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/meeple/internal/catalog"
	"github.com/verte-zerg/meeple/internal/config"
	"github.com/verte-zerg/meeple/internal/players"
	"github.com/verte-zerg/meeple/internal/remote"
	"github.com/verte-zerg/meeple/internal/sessions"
	"github.com/verte-zerg/meeple/internal/stats"
	"github.com/verte-zerg/meeple/internal/store"
)

const (
	defaultKeyPrefix       = "meeple"
	defaultRemoteTimeout   = 5 * time.Second
	defaultLeaderboardSize = 10
	defaultServerAddr      = ":8080"
	defaultSeedCount       = 30
)

var (
	globalDBPath      string
	globalRedisURL    string
	globalCatalogPath string
	globalVerbose     bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meeple",
		Short:         "Board game session log and stats",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&globalDBPath, "db", config.DefaultDBPath(), "local cache database path")
	rootCmd.PersistentFlags().StringVar(&globalRedisURL, "redis-url", "", "remote store URL (redis://...)")
	rootCmd.PersistentFlags().StringVar(&globalCatalogPath, "catalog", config.DefaultCatalogPath(), "game catalog file")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "log store activity to stderr")

	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the wired stores for one command invocation.
type app struct {
	cfg      config.FileConfig
	db       *store.Store
	remote   *remote.Client
	sessions *sessions.Store
	players  *players.Directory
	catalog  *catalog.Catalog
	agg      *stats.Aggregator
	logOut   io.Writer
}

// withApp opens the stores, loads both collections and closes everything
// once run returns.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return run(cmd, args, a)
	}
}

func openApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &globalDBPath, fileCfg.Local.DBPath)
	applyStringConfig(cmd, "catalog", &globalCatalogPath, fileCfg.Catalog.Path)
	if !cmd.Flags().Changed("redis-url") {
		globalRedisURL = fileCfg.RedisURL()
	}

	a := &app{cfg: fileCfg, logOut: logWriter(os.Stderr, globalVerbose, globalRedisURL != "")}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a.db, err = store.Open(globalDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if globalRedisURL != "" {
		remoteCfg := remote.Config{
			URL:       globalRedisURL,
			KeyPrefix: defaultKeyPrefix,
			Timeout:   defaultRemoteTimeout,
		}
		if fileCfg.Remote.KeyPrefix != nil {
			remoteCfg.KeyPrefix = *fileCfg.Remote.KeyPrefix
		}
		if fileCfg.Remote.Timeout != nil {
			remoteCfg.Timeout = fileCfg.Remote.Timeout.Duration
		}
		client, err := remote.NewClient(ctx, remoteCfg, a.logger("remote"))
		if err != nil {
			logErrf("warning: remote store unavailable, working offline: %v\n", err)
		} else {
			a.remote = client
		}
	}

	// A nil *remote.Client must not reach the stores as a non-nil interface.
	var sessionRemote sessions.Remote
	var playerRemote players.Remote
	if a.remote != nil {
		sessionRemote = a.remote
		playerRemote = a.remote
	}
	a.sessions = sessions.New(sessionRemote, a.db, a.logger("sessions"))
	a.players = players.New(playerRemote, a.db, a.sessions, a.logger("players"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.players.Load(gctx)
	})
	g.Go(func() error {
		return a.sessions.Load(gctx)
	})
	if err := g.Wait(); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	a.catalog, err = catalog.Load(globalCatalogPath)
	if err != nil {
		logErrf("warning: failed to load game catalog: %v\n", err)
		a.catalog = catalog.New(nil)
	}

	a.agg = stats.New(a.sessions, a.players, a.logger("stats"))
	if v := fileCfg.Stats.RecentGames; v != nil && *v > 0 {
		a.agg.RecentGames = *v
	}
	return a, nil
}

func (a *app) close() {
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			logErrf("failed to flush sessions: %v\n", err)
		}
	}
	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			logErrf("failed to close remote store: %v\n", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logErrf("failed to close db: %v\n", err)
		}
	}
}

func (a *app) logger(component string) *log.Logger {
	return log.New(a.logOut, "["+component+"] ", 0)
}

func (a *app) leaderboardSize() int {
	if v := a.cfg.Stats.LeaderboardSize; v != nil && *v > 0 {
		return *v
	}
	return defaultLeaderboardSize
}

func (a *app) pageSize() int {
	if v := a.cfg.Stats.PageSize; v != nil && *v > 0 {
		return *v
	}
	return sessions.DefaultPerPage
}

// warningFilter passes through warning lines that match none of skip.
type warningFilter struct {
	w    io.Writer
	skip [][]byte
}

func (f warningFilter) Write(p []byte) (int, error) {
	if !bytes.Contains(p, []byte("warning:")) {
		return len(p), nil
	}
	for _, s := range f.skip {
		if bytes.Contains(p, s) {
			return len(p), nil
		}
	}
	return f.w.Write(p)
}

// logWriter reduces component logs to warnings unless verbose. The offline
// notice is dropped when no remote URL is configured.
func logWriter(w io.Writer, verbose, remoteConfigured bool) io.Writer {
	if verbose {
		return w
	}
	f := warningFilter{w: w}
	if !remoteConfigured {
		f.skip = append(f.skip, []byte("remote store not configured"))
	}
	return f
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	if v := strings.TrimSpace(*value); v != "" {
		*target = v
	}
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringsConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if len(value) == 0 {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
