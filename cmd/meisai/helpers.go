package main

import (
	"context"
	"fmt"

	"github.com/harunari/meisai/internal/config"
	"github.com/harunari/meisai/internal/service"
	"github.com/harunari/meisai/internal/storage"
)

// initStorage opens the analysis-history database and brings the schema up
// to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
