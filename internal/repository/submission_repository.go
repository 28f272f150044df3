package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
)

// SubmissionRepository handles submission data access.
type SubmissionRepository struct {
	db  DBTX
	log zerolog.Logger
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(db DBTX, log zerolog.Logger) *SubmissionRepository {
	return &SubmissionRepository{db: db, log: log}
}

const submissionColumns = `id, session_name, exam_session_id, student_name, student_key, student_group,
	start_time, end_time, warnings, answers, auto_submitted, score, score_details, created_at`

// Create inserts a submission. Returns ErrDuplicate when the student already
// has a submission for the exam session.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	warnings, err := encodeJSON(s.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	answers, err := encodeJSON(s.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	details, err := encodeJSON(s.ScoreDetails)
	if err != nil {
		return fmt.Errorf("encode score details: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO submissions (session_name, exam_session_id, student_name, student_key, student_group,
		                          start_time, end_time, warnings, answers, auto_submitted, score, score_details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at`,
		s.SessionName, s.ExamSessionID, s.StudentName, s.StudentKey, s.Group,
		s.StartTime, s.EndTime, warnings, answers, s.AutoSubmitted, s.Score, details,
	).Scan(&s.ID, &s.CreatedAt)
	return mapErr(err)
}

// ExistsForStudent is the indexed single-attempt lookup.
func (r *SubmissionRepository) ExistsForStudent(ctx context.Context, examSessionID int, studentKey string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE exam_session_id = $1 AND student_key = $2)`,
		examSessionID, studentKey,
	).Scan(&exists)
	return exists, err
}

func (r *SubmissionRepository) scan(row interface{ Scan(dest ...any) error }) (*model.Submission, error) {
	var (
		s                          model.Submission
		warnings, answers, details []byte
	)
	if err := row.Scan(&s.ID, &s.SessionName, &s.ExamSessionID, &s.StudentName, &s.StudentKey, &s.Group,
		&s.StartTime, &s.EndTime, &warnings, &answers, &s.AutoSubmitted, &s.Score, &details, &s.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	decodeJSON(r.log, warnings, &s.Warnings, "warnings", s.ID)
	decodeJSON(r.log, answers, &s.Answers, "answers", s.ID)
	decodeJSON(r.log, details, &s.ScoreDetails, "score_details", s.ID)
	return &s, nil
}

// GetByID retrieves a submission by ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id int) (*model.Submission, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
}

// List retrieves submissions newest first with optional filters and pagination.
func (r *SubmissionRepository) List(ctx context.Context, f model.SubmissionFilter) ([]model.Submission, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.SessionName != "" {
		args = append(args, f.SessionName)
		where += fmt.Sprintf(" AND session_name = $%d", len(args))
	}
	if f.ExamSessionID != nil {
		args = append(args, *f.ExamSessionID)
		where += fmt.Sprintf(" AND exam_session_id = $%d", len(args))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM submissions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions` + where + ` ORDER BY created_at DESC, id DESC`
	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		args = append(args, f.PerPage, (page-1)*f.PerPage)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []model.Submission{}
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *s)
	}
	return list, total, rows.Err()
}
