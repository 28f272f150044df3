package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/repository"
	"github.com/stemsi/dictant-backend/internal/textnorm"
)

const joinCodeAttempts = 5

// ExamSessionService handles exam session and roster administration.
type ExamSessionService struct {
	store repository.Store
	log   zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(store repository.Store, log zerolog.Logger) *ExamSessionService {
	return &ExamSessionService{
		store: store,
		log:   log.With().Str("component", "exam_session_service").Logger(),
	}
}

// Create stores a new exam session with a freshly generated join code.
func (s *ExamSessionService) Create(ctx context.Context, req model.CreateExamSessionRequest) (*model.ExamSession, error) {
	name := strings.Join(strings.Fields(req.SessionName), " ")
	if name == "" {
		return nil, NewValidationError("session_name", "session name is required")
	}
	repos := s.store.Repos()

	if _, err := repos.ExamSessions.GetByName(ctx, name); err == nil {
		return nil, ErrSessionNameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get exam session: %w", err)
	}

	open := true
	if req.IsOpen != nil {
		open = *req.IsOpen
	}

	// Join codes are random; a collision only costs a retry.
	for range joinCodeAttempts {
		code, err := textnorm.GenerateJoinCode(textnorm.JoinCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate join code: %w", err)
		}
		es := &model.ExamSession{SessionName: name, JoinCode: code, IsOpen: open}
		err = repos.ExamSessions.Create(ctx, es)
		if err == nil {
			s.log.Info().Int("id", es.ID).Str("session", name).Msg("Exam session created")
			return es, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("create exam session: %w", err)
		}
		if _, lookupErr := repos.ExamSessions.GetByName(ctx, name); lookupErr == nil {
			return nil, ErrSessionNameTaken
		}
	}
	return nil, ErrJoinCodeExhausted
}

// List returns every exam session, newest first.
func (s *ExamSessionService) List(ctx context.Context) ([]model.ExamSession, error) {
	list, err := s.store.Repos().ExamSessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exam sessions: %w", err)
	}
	if list == nil {
		list = []model.ExamSession{}
	}
	return list, nil
}

// Get returns one exam session.
func (s *ExamSessionService) Get(ctx context.Context, id int) (*model.ExamSession, error) {
	es, err := s.store.Repos().ExamSessions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam session: %w", err)
	}
	return es, nil
}

// SetOpen opens or closes an exam session for new starts. Attempts already
// running are not affected.
func (s *ExamSessionService) SetOpen(ctx context.Context, id int, open bool) (*model.ExamSession, error) {
	es, err := s.store.Repos().ExamSessions.SetOpen(ctx, id, open)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set exam session open: %w", err)
	}
	s.log.Info().Int("id", id).Bool("open", open).Msg("Exam session toggled")
	return es, nil
}

// ReplaceRoster swaps the session roster for names. Names are matched on
// their normalized key; blanks and repeats are dropped and counted.
func (s *ExamSessionService) ReplaceRoster(ctx context.Context, id int, names []string) (*model.RosterUploadResult, error) {
	result := &model.RosterUploadResult{SessionID: id}
	seen := make(map[string]struct{}, len(names))
	entries := make([]model.RosterEntry, 0, len(names))
	for _, raw := range names {
		key := textnorm.NameKey(raw)
		if key == "" {
			result.Blank++
			continue
		}
		if _, dup := seen[key]; dup {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, model.RosterEntry{
			SessionID:   id,
			FullName:    strings.Join(strings.Fields(raw), " "),
			FullNameKey: key,
		})
	}
	if len(entries) == 0 {
		return nil, NewValidationError("names", "roster has no names")
	}

	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		if _, err := r.ExamSessions.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrExamSessionNotFound
			}
			return fmt.Errorf("get exam session: %w", err)
		}
		if err := r.Rosters.Replace(ctx, id, entries); err != nil {
			return fmt.Errorf("replace roster: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Loaded = len(entries)
	s.log.Info().
		Int("id", id).
		Int("loaded", result.Loaded).
		Int("duplicates", result.Duplicates).
		Int("blank", result.Blank).
		Msg("Roster replaced")
	return result, nil
}

// Roster lists the session roster.
func (s *ExamSessionService) Roster(ctx context.Context, id int) ([]model.RosterEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.store.Repos().Rosters.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	if list == nil {
		list = []model.RosterEntry{}
	}
	return list, nil
}
