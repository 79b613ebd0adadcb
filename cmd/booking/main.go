// Command booking runs the interactive movie booking console.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/config"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/console"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/database"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/queue"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/service"
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
	// Prompts own stdout.
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	store, err := database.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s data store: %w", cfg.StoreDriver, err)
	}
	defer store.Close()

	data, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s data store: %w", cfg.StoreDriver, err)
	}
	log.Info("data loaded", "users", len(data.Users), "movies", len(data.Movies), "showtimes", len(data.Showtimes))

	var publisher service.BookingPublisher
	if cfg.EventsEnabled {
		publisher = queue.NewPublisher(cfg.AMQPURL, log)
	}

	users := service.NewUserDirectory(store, data, log)
	users.BcryptCost = cfg.BcryptCost
	app := console.New(
		users,
		service.NewCatalog(data),
		service.NewBookingLedger(store, data, publisher, log),
		console.NewSession(cfg.SessionSecret, cfg.SessionTTL),
		log,
		os.Stdin,
		os.Stdout,
	)
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("console stopped: %w", err)
	}
	return nil
}
