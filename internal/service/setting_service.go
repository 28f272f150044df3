package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/config"
	"github.com/stemsi/dictant-backend/internal/isotime"
	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/notify"
	"github.com/stemsi/dictant-backend/internal/repository"
	"github.com/stemsi/dictant-backend/internal/textnorm"
	"github.com/stemsi/dictant-backend/internal/ticket"
)

// SettingService manages the dictation settings singleton and the answer key.
type SettingService struct {
	store repository.Store
	log   zerolog.Logger
}

func NewSettingService(store repository.Store, log zerolog.Logger) *SettingService {
	return &SettingService{
		store: store,
		log:   log.With().Str("component", "setting_service").Logger(),
	}
}

func view(s *model.Settings) *model.SettingsView {
	sets := s.IndicationSets
	if sets == nil {
		sets = map[string][]string{}
	}
	items := s.Ticket
	if items == nil {
		items = []model.TicketItem{}
	}
	return &model.SettingsView{
		Drugs:          s.DictatedTerms(),
		Ticket:         items,
		Duration:       s.Duration,
		Code:           s.Code,
		SessionName:    s.SessionName,
		IndicationKey:  s.IndicationKey,
		IndicationSets: sets,
		MasterSize:     len(s.AnswerKey),
		UpdatedAt:      s.UpdatedAt,
	}
}

// loadSettings returns the stored settings or a fresh value when none exist.
func loadSettings(ctx context.Context, r repository.Repos) (*model.Settings, error) {
	s, err := r.Settings.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.Settings{AnswerKey: model.AnswerKey{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if s.AnswerKey == nil {
		s.AnswerKey = model.AnswerKey{}
	}
	return s, nil
}

// GetSettings returns the admin view of the current settings.
func (s *SettingService) GetSettings(ctx context.Context) (*model.SettingsView, error) {
	settings, err := loadSettings(ctx, s.store.Repos())
	if err != nil {
		return nil, err
	}
	return view(settings), nil
}

// UpdateSettings applies a field-by-field patch. A drug list is validated
// and resolved against the answer key first; any problem rejects the whole
// update and leaves the stored settings untouched.
func (s *SettingService) UpdateSettings(ctx context.Context, req model.UpdateSettingsRequest) (*model.SettingsView, []notify.Event, error) {
	if req.Drugs != nil {
		if fields := textnorm.ValidateDictationTerms(*req.Drugs); fields != nil {
			return nil, nil, &ValidationError{Fields: fields}
		}
	}

	var saved *model.Settings
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		if err := r.Locks.Lock(ctx, config.CacheKey.SettingsLockKey()); err != nil {
			return err
		}
		settings, err := loadSettings(ctx, r)
		if err != nil {
			return err
		}

		if req.Drugs != nil {
			items, problems := ticket.Resolve(*req.Drugs, settings.AnswerKey)
			if len(problems) > 0 {
				return &ResolutionError{Problems: problems}
			}
			if items == nil {
				items = []model.TicketItem{}
			}
			settings.Ticket = items
		}
		if req.Duration != nil {
			settings.Duration = *req.Duration
		}
		if req.Code != nil {
			settings.Code = strings.TrimSpace(*req.Code)
		}
		if req.SessionName != nil {
			settings.SessionName = strings.TrimSpace(*req.SessionName)
		}
		if req.IndicationKey != nil {
			settings.IndicationKey = strings.TrimSpace(*req.IndicationKey)
		}
		if req.IndicationSets != nil {
			settings.IndicationSets = *req.IndicationSets
		}
		settings.UpdatedAt = isotime.Now()

		if err := r.Settings.Save(ctx, settings); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		saved = settings
		return nil
	})
	if err != nil {
		var resErr *ResolutionError
		if errors.As(err, &resErr) {
			s.log.Info().Int("problems", len(resErr.Problems)).Msg("Dictation terms rejected")
		}
		return nil, nil, err
	}

	v := view(saved)
	drugs := []string{}
	if req.Drugs != nil {
		drugs = v.Drugs
	}
	ev := notify.NewEvent(saved.SessionName, notify.EventSettingsUpdated, notify.SettingsUpdated{
		Drugs:          drugs,
		Duration:       saved.Duration,
		SessionName:    saved.SessionName,
		IndicationKey:  saved.IndicationKey,
		IndicationSets: v.IndicationSets,
	})
	s.log.Info().Int("ticket", len(saved.Ticket)).Int("duration", saved.Duration).Msg("Settings updated")
	return v, []notify.Event{ev}, nil
}

// ReplaceMaster swaps the answer key wholesale. The ticket is kept; items
// whose drug id is no longer in the key are reported back.
func (s *SettingService) ReplaceMaster(ctx context.Context, key model.AnswerKey, skipped int) (*model.MasterUploadResult, error) {
	if len(key) == 0 {
		return nil, NewValidationError("file", "master table has no rows with drug_id")
	}

	result := &model.MasterUploadResult{Loaded: len(key), Skipped: skipped, OrphanTicket: []model.TicketItem{}}
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		if err := r.Locks.Lock(ctx, config.CacheKey.SettingsLockKey()); err != nil {
			return err
		}
		settings, err := loadSettings(ctx, r)
		if err != nil {
			return err
		}
		for _, it := range settings.Ticket {
			if _, ok := key[it.DrugID]; !ok {
				result.OrphanTicket = append(result.OrphanTicket, it)
			}
		}
		settings.AnswerKey = key
		settings.UpdatedAt = isotime.Now()
		if err := r.Settings.Save(ctx, settings); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := s.log.Info().Int("loaded", result.Loaded).Int("skipped", result.Skipped)
	if len(result.OrphanTicket) > 0 {
		ev = ev.Int("orphans", len(result.OrphanTicket))
	}
	ev.Msg("Master table replaced")
	return result, nil
}

// AnswerKey returns the stored answer key.
func (s *SettingService) AnswerKey(ctx context.Context) (model.AnswerKey, error) {
	settings, err := loadSettings(ctx, s.store.Repos())
	if err != nil {
		return nil, err
	}
	if len(settings.AnswerKey) == 0 {
		return nil, ErrMasterNotLoaded
	}
	return settings.AnswerKey, nil
}
