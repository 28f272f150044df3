package repository

import (
	"context"

	"github.com/stemsi/dictant-backend/internal/model"
)

// ExamSessionRepository handles exam session data access.
type ExamSessionRepository struct {
	db DBTX
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(db DBTX) *ExamSessionRepository {
	return &ExamSessionRepository{db: db}
}

const examSessionColumns = `es.id, es.session_name, es.join_code, es.is_open, es.created_at,
	(SELECT COUNT(*) FROM roster_entries re WHERE re.session_id = es.id)`

func scanExamSession(row interface{ Scan(dest ...any) error }) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	if err := row.Scan(&s.ID, &s.SessionName, &s.JoinCode, &s.IsOpen, &s.CreatedAt, &s.RosterSize); err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

// Create inserts a new exam session. Returns ErrDuplicate when the name or
// join code is taken.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO exam_sessions (session_name, join_code, is_open)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.SessionName, s.JoinCode, s.IsOpen,
	).Scan(&s.ID, &s.CreatedAt)
	return mapErr(err)
}

// GetByID retrieves an exam session by ID.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id int) (*model.ExamSession, error) {
	return scanExamSession(r.db.QueryRow(ctx,
		`SELECT `+examSessionColumns+` FROM exam_sessions es WHERE es.id = $1`, id))
}

// GetByJoinCode retrieves an exam session by its join code.
func (r *ExamSessionRepository) GetByJoinCode(ctx context.Context, code string) (*model.ExamSession, error) {
	return scanExamSession(r.db.QueryRow(ctx,
		`SELECT `+examSessionColumns+` FROM exam_sessions es WHERE es.join_code = $1`, code))
}

// GetByName retrieves an exam session by its session name.
func (r *ExamSessionRepository) GetByName(ctx context.Context, name string) (*model.ExamSession, error) {
	return scanExamSession(r.db.QueryRow(ctx,
		`SELECT `+examSessionColumns+` FROM exam_sessions es WHERE es.session_name = $1`, name))
}

// List returns every exam session, newest first.
func (r *ExamSessionRepository) List(ctx context.Context) ([]model.ExamSession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+examSessionColumns+` FROM exam_sessions es ORDER BY es.created_at DESC, es.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []model.ExamSession{}
	for rows.Next() {
		s, err := scanExamSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// SetOpen opens or closes an exam session.
func (r *ExamSessionRepository) SetOpen(ctx context.Context, id int, open bool) (*model.ExamSession, error) {
	tag, err := r.db.Exec(ctx, `UPDATE exam_sessions SET is_open = $1 WHERE id = $2`, open, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}
