// Command notifier consumes booking confirmations and appends them to a
// log file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/config"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/queue"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: cfg.AMQPURL, LogDir: cfg.BookingLogDir, Log: log}
	log.Info("notifier started", "queue", queue.BookingConfirmedQueue, "log_dir", cfg.BookingLogDir)
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("notifier stopped: %w", err)
	}
	return nil
}
