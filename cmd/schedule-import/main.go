package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/riskibarqy/nhl-pickem/internal/app"
	"github.com/riskibarqy/nhl-pickem/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/nhl-pickem/internal/infrastructure/schedule/csvtable"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
)

// schedule-import loads a CSV schedule table (date,game_id,home_team,away_team) into
// the games table. Re-running it updates existing rows by game id.
func main() {
	logger := logging.New(os.Stderr, logging.FormatConsole, logging.LevelInfo).Named("schedule-import")
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Error("schedule import failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(logger *logging.Logger) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	path := flag.String("file", os.Getenv("SCHEDULE_TABLE_PATH"), "schedule CSV path")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing")
	flag.Parse()

	if strings.TrimSpace(*path) == "" {
		return fmt.Errorf("-file or SCHEDULE_TABLE_PATH is required")
	}

	games, err := csvtable.LoadFile(*path)
	if err != nil {
		return err
	}
	logger.Info("schedule parsed", "path", *path, "games", len(games))
	if *dryRun {
		return nil
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return fmt.Errorf("DB_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(ctx, dbURL, !strings.EqualFold(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT"), "false"))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.NewGameRepository(db).UpsertGames(ctx, games); err != nil {
		return fmt.Errorf("upsert games: %w", err)
	}

	logger.Info("schedule imported", "games", len(games))
	return nil
}
