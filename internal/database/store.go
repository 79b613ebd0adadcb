package database

import (
	"context"
	"fmt"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/config"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/repository"
)

// OpenStore returns the data store selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	return openStore(ctx, cfg, false)
}

// OpenReadOnlyStore is OpenStore for processes that must never write, such
// as the catalog server. A file store opened this way leaves a pending
// booking journal for the console to apply.
func OpenReadOnlyStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	return openStore(ctx, cfg, true)
}

func openStore(ctx context.Context, cfg config.Config, readOnly bool) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, &repository.AccessError{Resource: "mysql://" + cfg.DBHost + "/" + cfg.DBName, Op: "open", Err: err}
		}
		s, err := repository.NewSQLStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil
	case config.DriverFile, "":
		if readOnly {
			return repository.NewReadOnlyFileStore(cfg.DataDir), nil
		}
		return repository.NewFileStore(cfg.DataDir), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
