// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package backend opens the storage backend selected by DB_DRIVER and hands
// back its repositories. Both binaries go through it so the server and the
// maintenance CLI always see the same data.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hsarchitects/internal/config"
	"hsarchitects/internal/database"
	"hsarchitects/internal/store"
	"hsarchitects/internal/store/memstore"
	"hsarchitects/internal/store/mongostore"
)

// Backend is an open storage backend.
type Backend struct {
	Driver string
	Repos  *store.Repositories

	closers []func(context.Context) error
}

// Options tunes Open.
type Options struct {
	// Migrate applies pending PostgreSQL migrations and MongoDB indexes.
	Migrate bool
}

// Open connects to the configured backend. The caller must Close it.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Backend, error) {
	b := &Backend{Driver: cfg.DBDriver}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return db.Close() })
		if opts.Migrate {
			if err := database.Migrate(db); err != nil {
				db.Close()
				return nil, err
			}
		}
		b.Repos = store.NewPostgres(db)

	case config.DriverMongo:
		conn := database.NewMongoConnector(cfg.MongoURI, cfg.MongoDB)
		db, err := conn.Connect(ctx)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, conn.Close)
		if opts.Migrate {
			if err := mongostore.EnsureIndexes(ctx, db); err != nil {
				conn.Close(ctx)
				return nil, err
			}
		}
		if !mongostore.SupportsTransactions(ctx, db) {
			slog.Warn("mongodb is not a replica set, home grid reorder will fail", "db", cfg.MongoDB)
		}
		b.Repos = mongostore.New(db)

	case config.DriverMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		b.Repos = memstore.New()

	default:
		return nil, fmt.Errorf("backend: unknown driver %q", cfg.DBDriver)
	}

	return b, nil
}

// Close releases every connection the backend holds.
func (b *Backend) Close(ctx context.Context) error {
	var errs []error
	for _, c := range b.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
