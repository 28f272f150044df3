package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stemsi/dictant-backend/internal/model"
)

// RosterRepository handles roster data access.
type RosterRepository struct {
	db DBTX
}

// NewRosterRepository creates a new RosterRepository.
func NewRosterRepository(db DBTX) *RosterRepository {
	return &RosterRepository{db: db}
}

// Replace deletes the session's roster and inserts entries. Callers run it
// inside a transaction so a failed insert leaves the old roster intact.
func (r *RosterRepository) Replace(ctx context.Context, sessionID int, entries []model.RosterEntry) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM roster_entries WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO roster_entries (session_id, full_name, full_name_key) VALUES ($1, $2, $3)`,
			sessionID, e.FullName, e.FullNameKey,
		)
	}
	br := r.db.SendBatch(ctx, batch)
	for range entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return mapErr(err)
		}
	}
	return br.Close()
}

// List returns the session's roster ordered by name.
func (r *RosterRepository) List(ctx context.Context, sessionID int) ([]model.RosterEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, full_name, full_name_key
		 FROM roster_entries
		 WHERE session_id = $1
		 ORDER BY full_name_key ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.RosterEntry{}
	for rows.Next() {
		var e model.RosterEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.FullName, &e.FullNameKey); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Contains reports whether the normalized name is on the session's roster.
func (r *RosterRepository) Contains(ctx context.Context, sessionID int, nameKey string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roster_entries WHERE session_id = $1 AND full_name_key = $2)`,
		sessionID, nameKey,
	).Scan(&exists)
	return exists, err
}
