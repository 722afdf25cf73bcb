// Command ducksort runs the duck-sorting simulation as a headless server.
// Clients start rounds and steer the player over HTTP or WebSocket; every
// round is recorded in SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/duck-sorter/internal/api"
	"github.com/talgya/duck-sorter/internal/config"
	"github.com/talgya/duck-sorter/internal/engine"
	"github.com/talgya/duck-sorter/internal/entropy"
	"github.com/talgya/duck-sorter/internal/persistence"
)

func main() {
	history := flag.Int("history", 0, "print the N most recent rounds and the leaderboard, then exit")
	daily := flag.Bool("daily", false, "start today's round immediately")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// ── Database ──────────────────────────────────────────────────────
	if err := ensureDir(cfg.DBPath); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	if *history > 0 {
		if err := printHistory(db, *history); err != nil {
			slog.Error("history failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(cfg.Tuning, engine.SystemClock{}, cfg.TickHz)
	eng.OnEvent = func(ev engine.Event) {
		if err := db.RecordEvent(ev); err != nil {
			slog.Error("record event failed", "kind", ev.Kind, "round", ev.RoundID, "error", err)
		}
		if ev.Kind == engine.EventSolved {
			slog.Info("round time", "round", ev.RoundID, "seconds", fmt.Sprintf("%.2f", ev.Elapsed))
		}
	}

	seeds := entropy.NewSeedSource(cfg.RandomOrgKey)
	if seeds.Enabled() {
		slog.Info("random.org seed pool enabled")
	}

	if *daily {
		seed := entropy.DailySeed(time.Now())
		if _, err := eng.Start(engine.Round{
			Seed:          seed,
			NumGroups:     api.DefaultGroups,
			DucksPerGroup: api.DefaultDucksPerGroup,
		}); err != nil {
			slog.Error("failed to start daily round", "error", err)
			os.Exit(1)
		}
		recordMeta(db, "last_seed", strconv.FormatInt(seed, 10))
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{
		Eng:         eng,
		DB:          db,
		Seeds:       seeds,
		Port:        cfg.Port,
		BroadcastHz: cfg.BroadcastHz,
		CORSOrigins: cfg.CORSOrigins,
	}
	srv := apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nDuck pond ready: %s tuning, %d Hz.\n", cfg.Tuning.Name, cfg.TickHz)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Waiting for rounds... (Ctrl+C to stop)")

	eng.Run(ctx)

	slog.Info("shutting down")
	eng.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	recordMeta(db, "last_shutdown", time.Now().Format(time.RFC3339))
	fmt.Println("Server stopped. Round history saved.")
}

// ensureDir creates the directory holding the database file.
func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// recordMeta stores a meta value; failures are logged, not fatal.
func recordMeta(db *persistence.DB, key, value string) {
	if err := db.SaveMeta(key, value); err != nil {
		slog.Warn("failed to save meta", "key", key, "error", err)
	}
}

func printHistory(db *persistence.DB, limit int) error {
	totals, err := db.RoundTotals()
	if err != nil {
		return err
	}
	fmt.Printf("%s rounds played, %s solved\n",
		humanize.Comma(int64(totals.Played)), humanize.Comma(int64(totals.Solved)))
	if v, err := db.GetMeta("last_shutdown"); err == nil {
		if at, err := time.Parse(time.RFC3339, v); err == nil {
			fmt.Printf("Server last stopped %s\n", humanize.Time(at))
		}
	}
	fmt.Println()

	rounds, err := db.RecentRounds(limit)
	if err != nil {
		return err
	}
	fmt.Println("Recent rounds:")
	for _, r := range rounds {
		outcome := "abandoned"
		switch {
		case r.Solved && r.FinalTime != nil:
			outcome = fmt.Sprintf("solved in %.2fs", *r.FinalTime)
		case r.FinishedAt == nil:
			outcome = "in progress"
		}
		fmt.Printf("  %-14s seed %-9d %d×%d  %-9s %s ticks  %s\n",
			humanize.Time(r.Started()), r.Seed, r.NumGroups, r.DucksPerGroup,
			r.Tuning, humanize.Comma(int64(r.Ticks)), outcome)
	}

	best, err := db.BestTimes(persistence.LeaderboardQuery{Limit: limit})
	if err != nil {
		return err
	}
	fmt.Println("\nFastest solves:")
	for i, r := range best {
		fmt.Printf("  %s  %.2fs  seed %d  %d×%d  %s\n",
			humanize.Ordinal(i+1), *r.FinalTime, r.Seed, r.NumGroups, r.DucksPerGroup,
			humanize.Time(r.Started()))
	}
	return nil
}
