package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/repository"
)

// monitorRecentLimit caps the finished-submission list in a snapshot.
const monitorRecentLimit = 100

// MonitorService builds the live view an admin monitor starts from.
type MonitorService struct {
	store     repository.Store
	admission *AdmissionService
	log       zerolog.Logger
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(store repository.Store, admission *AdmissionService, log zerolog.Logger) *MonitorService {
	return &MonitorService{
		store:     store,
		admission: admission,
		log:       log.With().Str("component", "monitor_service").Logger(),
	}
}

// MonitorSnapshot is the state of one session at subscription time.
type MonitorSnapshot struct {
	SessionName string                    `json:"sessionName"`
	Active      []model.ActiveSession     `json:"active"`
	Finished    []model.SubmissionSummary `json:"finished"`
	Total       int64                     `json:"finishedTotal"`
}

// Snapshot fetches presence and finished submissions concurrently.
// Presence is required; the submission list is best-effort.
func (s *MonitorService) Snapshot(ctx context.Context, sessionName string) (*MonitorSnapshot, error) {
	snap := &MonitorSnapshot{
		SessionName: sessionName,
		Active:      []model.ActiveSession{},
		Finished:    []model.SubmissionSummary{},
	}

	var (
		active    []model.ActiveSession
		finished  []model.Submission
		total     int64
		activeErr error
		subErr    error
		wg        sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		active, _, activeErr = s.admission.ListActive(ctx, sessionName)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		finished, total, subErr = s.store.Repos().Submissions.List(ctx, model.SubmissionFilter{
			SessionName: sessionName,
			Page:        1,
			PerPage:     monitorRecentLimit,
		})
	}()

	wg.Wait()

	if activeErr != nil {
		return nil, activeErr
	}
	if active != nil {
		snap.Active = active
	}

	if subErr != nil {
		s.log.Warn().Err(subErr).Str("session", sessionName).Msg("Monitor snapshot without submissions")
	} else {
		for i := range finished {
			snap.Finished = append(snap.Finished, finished[i].Summary())
		}
		snap.Total = total
	}

	return snap, nil
}
