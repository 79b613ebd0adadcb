// Command importer copies the JSON collections in DATA_DIR into the MySQL
// store configured by the DB_* variables, replacing its contents.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/config"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/database"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/repository"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	data, err := repository.NewFileStore(cfg.DataDir).Load(ctx)
	if err != nil {
		return fmt.Errorf("load files in %s: %w", cfg.DataDir, err)
	}

	db, err := database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("connect mysql at %s: %w", cfg.DBHost, err)
	}
	defer db.Close()

	store, err := repository.NewSQLStore(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := store.Import(ctx, data); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	log.Info("import complete", "users", len(data.Users), "movies", len(data.Movies),
		"showtimes", len(data.Showtimes), "user_sequence", data.UserSeq)
	return nil
}
