package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
)

// SettingRepository handles the settings singleton row (id = 1).
type SettingRepository struct {
	db  DBTX
	log zerolog.Logger
}

func NewSettingRepository(db DBTX, log zerolog.Logger) *SettingRepository {
	return &SettingRepository{db: db, log: log}
}

func (r *SettingRepository) Get(ctx context.Context) (*model.Settings, error) {
	var (
		s                    model.Settings
		key, ticket, indSets []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT answer_key, ticket, duration, code, session_name, indication_key, indication_sets, updated_at
		 FROM settings WHERE id = 1`,
	).Scan(&key, &ticket, &s.Duration, &s.Code, &s.SessionName, &s.IndicationKey, &indSets, &s.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	decodeJSON(r.log, key, &s.AnswerKey, "answer_key", 1)
	decodeJSON(r.log, ticket, &s.Ticket, "ticket", 1)
	decodeJSON(r.log, indSets, &s.IndicationSets, "indication_sets", 1)
	return &s, nil
}

func (r *SettingRepository) Save(ctx context.Context, s *model.Settings) error {
	key, err := encodeJSON(s.AnswerKey)
	if err != nil {
		return fmt.Errorf("encode answer key: %w", err)
	}
	ticket, err := encodeJSON(s.Ticket)
	if err != nil {
		return fmt.Errorf("encode ticket: %w", err)
	}
	indSets, err := encodeJSON(s.IndicationSets)
	if err != nil {
		return fmt.Errorf("encode indication sets: %w", err)
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO settings (id, answer_key, ticket, duration, code, session_name, indication_key, indication_sets, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET answer_key = EXCLUDED.answer_key,
		     ticket = EXCLUDED.ticket,
		     duration = EXCLUDED.duration,
		     code = EXCLUDED.code,
		     session_name = EXCLUDED.session_name,
		     indication_key = EXCLUDED.indication_key,
		     indication_sets = EXCLUDED.indication_sets,
		     updated_at = NOW()
		 RETURNING updated_at`,
		key, ticket, s.Duration, s.Code, s.SessionName, s.IndicationKey, indSets,
	).Scan(&s.UpdatedAt)
}
