package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/repository"
)

const defaultPerPage = 50

// SubmissionService reads the submission history.
type SubmissionService struct {
	store repository.Store
	log   zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(store repository.Store, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		store: store,
		log:   log.With().Str("component", "submission_service").Logger(),
	}
}

// SubmissionPage is one page of the history listing.
type SubmissionPage struct {
	Items   []model.SubmissionSummary `json:"items"`
	Total   int64                     `json:"total"`
	Page    int                       `json:"page"`
	PerPage int                       `json:"per_page"`
}

// List returns submissions newest first.
func (s *SubmissionService) List(ctx context.Context, f model.SubmissionFilter) (*SubmissionPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 500 {
		f.PerPage = defaultPerPage
	}
	list, total, err := s.store.Repos().Submissions.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	page := &SubmissionPage{
		Items:   make([]model.SubmissionSummary, 0, len(list)),
		Total:   total,
		Page:    f.Page,
		PerPage: f.PerPage,
	}
	for i := range list {
		page.Items = append(page.Items, list[i].Summary())
	}
	return page, nil
}

// Get returns one submission with its answers and score breakdown.
func (s *SubmissionService) Get(ctx context.Context, id int) (*model.Submission, error) {
	sub, err := s.store.Repos().Submissions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// ForExport returns every matching submission in chronological order:
// by start time with unknown start times last, then by id.
func (s *SubmissionService) ForExport(ctx context.Context, f model.SubmissionFilter) ([]model.Submission, error) {
	f.Page, f.PerPage = 0, 0
	list, _, err := s.store.Repos().Submissions.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if len(list) == 0 {
		return nil, ErrNothingToExport
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].StartTime, list[j].StartTime
		switch {
		case a == nil && b == nil:
			return list[i].ID < list[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}
