package repository

import (
	"context"
	"time"

	"github.com/stemsi/dictant-backend/internal/model"
)

// PresenceRepository handles active-session (presence) data access.
type PresenceRepository struct {
	db DBTX
}

// NewPresenceRepository creates a new PresenceRepository.
func NewPresenceRepository(db DBTX) *PresenceRepository {
	return &PresenceRepository{db: db}
}

// Upsert creates the presence record or reactivates the existing one.
func (r *PresenceRepository) Upsert(ctx context.Context, a *model.ActiveSession) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO active_sessions (student_name, student_key, student_group, session_name, start_time, last_activity, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_name, student_key) DO UPDATE
		 SET student_name = EXCLUDED.student_name,
		     student_group = EXCLUDED.student_group,
		     last_activity = EXCLUDED.last_activity,
		     status = EXCLUDED.status
		 RETURNING id, start_time`,
		a.StudentName, a.StudentKey, a.Group, a.SessionName, a.StartTime, a.LastActivity, a.Status,
	).Scan(&a.ID, &a.StartTime)
}

// Touch marks an existing record active as of now.
func (r *PresenceRepository) Touch(ctx context.Context, sessionName, studentKey string, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE active_sessions SET status = $1, last_activity = $2
		 WHERE session_name = $3 AND student_key = $4`,
		model.PresenceActive, now, sessionName, studentKey)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkStale transitions active records idle since before cutoff.
func (r *PresenceRepository) MarkStale(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`WITH stale AS (
		     UPDATE active_sessions SET status = $1
		     WHERE status = $2 AND last_activity < $3
		     RETURNING session_name
		 )
		 SELECT DISTINCT session_name FROM stale ORDER BY session_name`,
		model.PresenceStale, model.PresenceActive, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the record, reporting whether one existed.
func (r *PresenceRepository) Delete(ctx context.Context, sessionName, studentKey string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM active_sessions WHERE session_name = $1 AND student_key = $2`,
		sessionName, studentKey)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List returns presence records ordered by start time.
func (r *PresenceRepository) List(ctx context.Context, sessionName string) ([]model.ActiveSession, error) {
	query := `SELECT id, student_name, student_key, student_group, session_name, start_time, last_activity, status
		FROM active_sessions`
	args := []any{}
	if sessionName != "" {
		query += ` WHERE session_name = $1`
		args = append(args, sessionName)
	}
	query += ` ORDER BY start_time ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.ActiveSession{}
	for rows.Next() {
		var a model.ActiveSession
		if err := rows.Scan(&a.ID, &a.StudentName, &a.StudentKey, &a.Group, &a.SessionName,
			&a.StartTime, &a.LastActivity, &a.Status); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
