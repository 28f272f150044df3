package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/config"
	"github.com/stemsi/dictant-backend/internal/isotime"
	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/notify"
	"github.com/stemsi/dictant-backend/internal/repository"
	"github.com/stemsi/dictant-backend/internal/scoring"
	"github.com/stemsi/dictant-backend/internal/textnorm"
	"github.com/stemsi/dictant-backend/internal/ticket"
)

// attemptGrace extends an attempt token past the dictation duration so a
// late auto-submit still authenticates.
const attemptGrace = 30 * time.Minute

// AdmissionService runs the per-student attempt lifecycle: start, activity
// pings, staleness, and submission. Methods return the notifications their
// state change implies; callers publish them once the call has returned.
type AdmissionService struct {
	store      repository.Store
	auth       *AuthService
	staleAfter time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewAdmissionService creates a new AdmissionService.
func NewAdmissionService(store repository.Store, auth *AuthService, cfg *config.Config, log zerolog.Logger) *AdmissionService {
	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 60 * time.Second
	}
	return &AdmissionService{
		store:      store,
		auth:       auth,
		staleAfter: staleAfter,
		now:        isotime.Now,
		log:        log.With().Str("component", "admission").Logger(),
	}
}

// SetClock replaces the time source.
func (s *AdmissionService) SetClock(now func() time.Time) {
	s.now = now
}

func activeUpdated(sessionName string) notify.Event {
	return notify.NewEvent(sessionName, notify.EventActiveUpdated, nil)
}

// StartSession admits a student to the exam session matching the join code
// and returns their shuffled ticket. Every admission check and the presence
// write happen in one transaction, serialized per (session, student).
func (s *AdmissionService) StartSession(ctx context.Context, req model.StartRequest) (*model.StartResponse, []notify.Event, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	name := strings.Join(strings.Fields(req.StudentName), " ")
	key := textnorm.NameKey(name)
	group := strings.TrimSpace(req.Group)
	if key == "" {
		return nil, nil, NewValidationError("studentName", "student name is required")
	}
	if code == "" {
		return nil, nil, NewValidationError("code", "join code is required")
	}

	now := s.now()
	var resp *model.StartResponse
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		es, err := r.ExamSessions.GetByJoinCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCode
		}
		if err != nil {
			return fmt.Errorf("get exam session: %w", err)
		}
		if !es.IsOpen {
			return ErrSessionClosed
		}

		if err := r.Locks.Lock(ctx, config.CacheKey.AdmissionLockKey(es.SessionName, key)); err != nil {
			return err
		}

		onRoster, err := r.Rosters.Contains(ctx, es.ID, key)
		if err != nil {
			return fmt.Errorf("check roster: %w", err)
		}
		if !onRoster {
			return ErrNotOnRoster
		}

		attempted, err := r.Submissions.ExistsForStudent(ctx, es.ID, key)
		if err != nil {
			return fmt.Errorf("check attempts: %w", err)
		}
		if attempted {
			return ErrAlreadyAttempted
		}

		settings, err := r.Settings.Get(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotConfigured
		}
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}
		if len(settings.Ticket) == 0 {
			return ErrNotConfigured
		}

		presence := &model.ActiveSession{
			StudentName:  name,
			StudentKey:   key,
			Group:        group,
			SessionName:  es.SessionName,
			StartTime:    now,
			LastActivity: now,
			Status:       model.PresenceActive,
		}
		if err := r.Presence.Upsert(ctx, presence); err != nil {
			return fmt.Errorf("upsert presence: %w", err)
		}

		order := ticket.Shuffle(len(settings.Ticket), ticket.SeedFor(es.SessionName, key, group, es.JoinCode))
		ttl := time.Duration(settings.Duration)*time.Minute + attemptGrace
		token, err := s.auth.GenerateAttemptToken(Claims{
			StudentName:   name,
			StudentKey:    key,
			Group:         group,
			SessionName:   es.SessionName,
			ExamSessionID: es.ID,
			StartTime:     presence.StartTime,
		}, ttl)
		if err != nil {
			return err
		}

		resp = &model.StartResponse{
			Token:          token,
			SessionName:    es.SessionName,
			Duration:       settings.Duration,
			IndicationKey:  settings.IndicationKey,
			IndicationSets: settings.IndicationSets,
			Ticket:         ticket.Permute(settings.Ticket, order),
			StartTime:      presence.StartTime,
		}
		return nil
	})
	if err != nil {
		if IsAdmissionError(err) {
			s.log.Info().Str("student", key).Str("reason", err.Error()).Msg("Start rejected")
		}
		return nil, nil, err
	}

	s.log.Info().Str("student", key).Str("session", resp.SessionName).Int("items", len(resp.Ticket)).Msg("Attempt started")
	return resp, []notify.Event{activeUpdated(resp.SessionName)}, nil
}

// RecordActivity refreshes the student's presence record. It never creates
// one: without a prior start it is a no-op.
func (s *AdmissionService) RecordActivity(ctx context.Context, studentName, sessionName string) ([]notify.Event, error) {
	ok, err := s.store.Repos().Presence.Touch(ctx, sessionName, textnorm.NameKey(studentName), s.now())
	if err != nil {
		return nil, fmt.Errorf("touch presence: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return []notify.Event{activeUpdated(sessionName)}, nil
}

// SweepStale marks active records idle for longer than the stale threshold
// as stale. It is idempotent.
func (s *AdmissionService) SweepStale(ctx context.Context) ([]notify.Event, error) {
	names, err := s.store.Repos().Presence.MarkStale(ctx, s.now().Add(-s.staleAfter))
	if err != nil {
		return nil, fmt.Errorf("mark stale: %w", err)
	}
	events := make([]notify.Event, 0, len(names))
	for _, name := range names {
		events = append(events, activeUpdated(name))
	}
	if len(names) > 0 {
		s.log.Debug().Strs("sessions", names).Msg("Presence marked stale")
	}
	return events, nil
}

// ListActive sweeps stale records, then lists presence for a session (all
// sessions when sessionName is empty).
func (s *AdmissionService) ListActive(ctx context.Context, sessionName string) ([]model.ActiveSession, []notify.Event, error) {
	events, err := s.SweepStale(ctx)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.store.Repos().Presence.List(ctx, sessionName)
	if err != nil {
		return nil, nil, fmt.Errorf("list presence: %w", err)
	}
	return list, events, nil
}

// CloseOnSubmission removes the student's presence record, if any.
func (s *AdmissionService) CloseOnSubmission(ctx context.Context, studentName, sessionName string) ([]notify.Event, error) {
	deleted, err := s.store.Repos().Presence.Delete(ctx, sessionName, textnorm.NameKey(studentName))
	if err != nil {
		return nil, fmt.Errorf("delete presence: %w", err)
	}
	if !deleted {
		return nil, nil
	}
	return []notify.Event{activeUpdated(sessionName)}, nil
}

// Submit scores and stores the attempt identified by claims. Answers keyed
// by shown position are mapped back to drug ids using the order rebuilt
// from the attempt's seed.
func (s *AdmissionService) Submit(ctx context.Context, claims *Claims, req model.SubmitRequest) (*model.Submission, []notify.Event, error) {
	if claims == nil || claims.StudentKey == "" {
		return nil, nil, NewValidationError("token", "attempt token is required")
	}

	now := s.now()
	var sub *model.Submission
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		es, err := r.ExamSessions.GetByID(ctx, claims.ExamSessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExamSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get exam session: %w", err)
		}

		if err := r.Locks.Lock(ctx, config.CacheKey.AdmissionLockKey(es.SessionName, claims.StudentKey)); err != nil {
			return err
		}

		attempted, err := r.Submissions.ExistsForStudent(ctx, es.ID, claims.StudentKey)
		if err != nil {
			return fmt.Errorf("check attempts: %w", err)
		}
		if attempted {
			return ErrAlreadyAttempted
		}

		settings, err := r.Settings.Get(ctx)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("get settings: %w", err)
		}
		if settings == nil {
			settings = &model.Settings{}
		}

		answers := req.Answers
		if answers == nil {
			answers = model.Answers{}
		}
		order := ticket.Shuffle(len(settings.Ticket), ticket.SeedFor(es.SessionName, claims.StudentKey, claims.Group, es.JoinCode))
		answers = ticket.Unshuffle(answers, settings.Ticket, order)
		score, breakdown := scoring.Compute(answers, settings.AnswerKey)

		start := isotime.ParseOptional(req.StartTime)
		if start == nil && !claims.StartTime.IsZero() {
			t := claims.StartTime.UTC()
			start = &t
		}
		end := isotime.ParseOptional(req.EndTime)
		if end == nil {
			end = &now
		}
		warnings := req.Warnings
		if warnings == nil {
			warnings = []json.RawMessage{}
		}

		examID := es.ID
		sub = &model.Submission{
			SessionName:   es.SessionName,
			ExamSessionID: &examID,
			StudentName:   claims.StudentName,
			StudentKey:    claims.StudentKey,
			Group:         claims.Group,
			StartTime:     start,
			EndTime:       end,
			Warnings:      warnings,
			Answers:       answers,
			AutoSubmitted: req.AutoSubmitted,
			Score:         score,
			ScoreDetails:  breakdown,
		}
		if err := r.Submissions.Create(ctx, sub); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyAttempted
			}
			return fmt.Errorf("create submission: %w", err)
		}

		if _, err := r.Presence.Delete(ctx, es.SessionName, claims.StudentKey); err != nil {
			return fmt.Errorf("delete presence: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Int("submission_id", sub.ID).
		Str("student", sub.StudentKey).
		Str("session", sub.SessionName).
		Bool("auto", sub.AutoSubmitted).
		Msg("Submission stored")

	events := []notify.Event{
		notify.NewEvent(sub.SessionName, notify.EventStudentFinished, notify.StudentFinished{
			StudentName: sub.StudentName,
			Group:       sub.Group,
			SessionName: sub.SessionName,
			Score:       sub.Score,
		}),
		notify.NewEvent(sub.SessionName, notify.EventSubmissionCreated, notify.SubmissionCreated{
			ID:            sub.ID,
			SessionName:   sub.SessionName,
			StudentName:   sub.StudentName,
			Group:         sub.Group,
			StartTime:     sub.StartTime,
			EndTime:       sub.EndTime,
			AutoSubmitted: sub.AutoSubmitted,
			Score:         sub.Score,
		}),
		activeUpdated(sub.SessionName),
	}
	return sub, events, nil
}
