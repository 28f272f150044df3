package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		log:  log.With().Str("component", "repository").Logger(),
	}
}

// Repos returns repositories running on the pool, outside any transaction.
func (s *PostgresStore) Repos() Repos {
	return s.bind(s.pool)
}

// WithTx runs fn inside a single database transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(r Repos) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(s.bind(tx))
	})
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) bind(db DBTX) Repos {
	return Repos{
		ExamSessions: NewExamSessionRepository(db),
		Rosters:      NewRosterRepository(db),
		Presence:     NewPresenceRepository(db),
		Submissions:  NewSubmissionRepository(db, s.log),
		Settings:     NewSettingRepository(db, s.log),
		Locks:        &advisoryLocker{db: db},
	}
}

// advisoryLocker takes transaction-scoped Postgres advisory locks. Outside a
// transaction the lock is released as soon as the statement completes.
type advisoryLocker struct {
	db DBTX
}

func (l *advisoryLocker) Lock(ctx context.Context, key string) error {
	if _, err := l.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("advisory lock %q: %w", key, err)
	}
	return nil
}
