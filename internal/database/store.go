package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/config"
	"github.com/stemsi/dictant-backend/internal/notify"
	"github.com/stemsi/dictant-backend/internal/repository"
	"github.com/stemsi/dictant-backend/internal/repository/memory"
)

// Backend is the storage and notification wiring chosen by STORE_DRIVER.
type Backend struct {
	Store   repository.Store
	Bus     notify.Bus
	Checks  map[string]func(ctx context.Context) error
	closers []func()
}

// Close releases every connection opened by Open.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// Open connects the configured backend. The postgres driver also requires
// Redis for cross-instance notifications; the memory driver keeps both in
// process and is meant for development and demos.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		return &Backend{
			Store:  memory.NewStore(),
			Bus:    notify.NewLocalBus(),
			Checks: map[string]func(ctx context.Context) error{},
		}, nil

	case config.StoreDriverPostgres:
		b := &Backend{Checks: map[string]func(ctx context.Context) error{}}

		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.Checks["postgres"] = pool.Ping

		rdb, err := NewRedisClient(ctx, cfg, log)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

		b.Store = repository.NewPostgresStore(pool, log)
		b.Bus = notify.NewRedisBus(rdb, log)
		return b, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
