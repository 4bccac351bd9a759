package cmd

import (
	"context"
	"fmt"

	"github.com/economistry/repec-harvester/internal/fetch"
	"github.com/economistry/repec-harvester/internal/storage"
	"github.com/economistry/repec-harvester/internal/storage/postgres"
)

// openStore connects the Postgres store and ensures the schema exists.
func openStore(ctx context.Context) (storage.Store, error) {
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required (set REPEC_DB_DSN or the config file)")
	}
	store, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func newFetcher() fetch.Fetcher {
	return fetch.NewCollyFetcher(fetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, logger)
}
