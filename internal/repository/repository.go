package repository

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// ExamSessionStore persists exam sessions.
type ExamSessionStore interface {
	Create(ctx context.Context, s *model.ExamSession) error
	GetByID(ctx context.Context, id int) (*model.ExamSession, error)
	GetByJoinCode(ctx context.Context, code string) (*model.ExamSession, error)
	GetByName(ctx context.Context, name string) (*model.ExamSession, error)
	List(ctx context.Context) ([]model.ExamSession, error)
	SetOpen(ctx context.Context, id int, open bool) (*model.ExamSession, error)
}

// RosterStore persists exam session rosters.
type RosterStore interface {
	Replace(ctx context.Context, sessionID int, entries []model.RosterEntry) error
	List(ctx context.Context, sessionID int) ([]model.RosterEntry, error)
	Contains(ctx context.Context, sessionID int, nameKey string) (bool, error)
}

// PresenceStore persists active-attempt presence records.
type PresenceStore interface {
	// Upsert creates the record or reactivates the existing one for the
	// same (session name, student key).
	Upsert(ctx context.Context, a *model.ActiveSession) error
	// Touch refreshes an existing record. It reports false when none exists.
	Touch(ctx context.Context, sessionName, studentKey string, now time.Time) (bool, error)
	// MarkStale flips active records last seen before cutoff to stale and
	// returns the distinct session names affected.
	MarkStale(ctx context.Context, cutoff time.Time) ([]string, error)
	Delete(ctx context.Context, sessionName, studentKey string) (bool, error)
	// List returns records ordered by start time; an empty sessionName lists all.
	List(ctx context.Context, sessionName string) ([]model.ActiveSession, error)
}

// SubmissionStore persists completed attempts.
type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	ExistsForStudent(ctx context.Context, examSessionID int, studentKey string) (bool, error)
	GetByID(ctx context.Context, id int) (*model.Submission, error)
	// List returns submissions newest first. PerPage <= 0 returns every match.
	List(ctx context.Context, f model.SubmissionFilter) ([]model.Submission, int64, error)
}

// SettingsStore persists the settings singleton.
type SettingsStore interface {
	// Get returns ErrNotFound when no settings have been saved yet.
	Get(ctx context.Context) (*model.Settings, error)
	Save(ctx context.Context, s *model.Settings) error
}

// Locker serializes critical sections for the lifetime of the enclosing
// transaction.
type Locker interface {
	Lock(ctx context.Context, key string) error
}

// Repos bundles the stores bound to one connection or transaction.
type Repos struct {
	ExamSessions ExamSessionStore
	Rosters      RosterStore
	Presence     PresenceStore
	Submissions  SubmissionStore
	Settings     SettingsStore
	Locks        Locker
}

// Store hands out repositories and runs transactions.
type Store interface {
	Repos() Repos
	// WithTx runs fn in one transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(r Repos) error) error
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// decodeJSON unmarshals a stored JSON column into dst. Malformed data is
// logged and leaves dst at its zero value.
func decodeJSON(log zerolog.Logger, raw []byte, dst any, column string, id int) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		reflect.ValueOf(dst).Elem().SetZero()
		log.Warn().Err(err).Str("column", column).Int("id", id).Msg("Malformed JSON column, using empty value")
	}
}

func encodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
