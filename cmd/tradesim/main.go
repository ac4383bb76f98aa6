// Command tradesim runs the Tradewinds commodity trading simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/talgya/tradewinds/internal/api"
	"github.com/talgya/tradewinds/internal/config"
	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/persistence"
)

func main() {
	configPath := flag.String("config", "tradewinds.yaml", "path to config file")
	weeks := flag.Int("weeks", 0, "advance this many weeks on startup")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Tradewinds — Commodity Trading Simulation")

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Env overrides file for the admin key so it stays out of version control.
	if key := os.Getenv("TRADEWINDS_ADMIN_KEY"); key != "" {
		cfg.AdminKey = key
	}
	if cfg.AdminKey == "" {
		slog.Warn("no admin key configured — admin POST endpoints will be disabled")
	}

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Simulation ────────────────────────────────────────────────────
	eng := engine.New(cfg)
	slog.Info("simulation ready",
		"seed", cfg.Seed,
		"capital", cfg.StartingCapital,
		"week", eng.Week(),
		"year", eng.Year(),
	)

	if err := db.SaveWeek(eng); err != nil {
		slog.Error("initial save failed", "error", err)
	}

	if resumed, err := db.GetMeta("week"); err == nil && resumed != "" {
		if w, err := strconv.Atoi(resumed); err == nil && w > eng.Week() {
			slog.Info("database holds history beyond current run", "saved_week", w)
		}
	}

	// Optional fast-forward before serving.
	for i := 0; i < *weeks; i++ {
		eng.AdvanceWeek()
		if err := db.SaveWeek(eng); err != nil {
			slog.Error("weekly save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{
		Eng:         eng,
		DB:          db,
		Port:        cfg.APIPort,
		AdminKey:    cfg.AdminKey,
		CommandRate: cfg.CommandRate,
	}
	apiServer.Start()

	fmt.Printf("\nTradewinds running: week %d, year %d, capital $%.0f.\n",
		eng.Week(), eng.Year(), eng.Ledger().Balance())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	fmt.Println("POST /api/v1/advance to move the clock. (Ctrl+C to stop)")

	// ── Wait for shutdown ─────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	if err := db.SaveWeek(eng); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Simulation stopped. State saved.")
}
