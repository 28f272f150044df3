package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/dictant-backend/internal/config"
	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/notify"
	"github.com/stemsi/dictant-backend/internal/repository/memory"
)

type fixture struct {
	ctx         context.Context
	store       *memory.Store
	cfg         *config.Config
	auth        *AuthService
	admission   *AdmissionService
	settings    *SettingService
	sessions    *ExamSessionService
	submissions *SubmissionService
	clock       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		StaleAfter: 60 * time.Second,
	}
	store := memory.NewStore()
	auth := NewAuthService(cfg)
	log := zerolog.Nop()

	f := &fixture{
		ctx:         context.Background(),
		store:       store,
		cfg:         cfg,
		auth:        auth,
		admission:   NewAdmissionService(store, auth, cfg, log),
		settings:    NewSettingService(store, log),
		sessions:    NewExamSessionService(store, log),
		submissions: NewSubmissionService(store, log),
		clock:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	f.admission.SetClock(func() time.Time { return f.clock })
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

// atorvastatinKey is a one-drug master table.
func atorvastatinKey() model.AnswerKey {
	return model.AnswerKey{
		"d1": {
			DrugID:       "d1",
			MNN:          "аторвастатин",
			MNNRu:        "аторвастатин",
			TradeNamesRu: []string{"липримар"},
		},
	}
}

// prepare loads the master table, saves a dictation of one term and opens a
// session with a one-name roster.
func (f *fixture) prepare(t *testing.T) *model.ExamSession {
	t.Helper()
	_, err := f.settings.ReplaceMaster(f.ctx, atorvastatinKey(), 0)
	require.NoError(t, err)

	drugs := []string{"аторвастатин"}
	duration := 20
	_, _, err = f.settings.UpdateSettings(f.ctx, model.UpdateSettingsRequest{Drugs: &drugs, Duration: &duration})
	require.NoError(t, err)

	es, err := f.sessions.Create(f.ctx, model.CreateExamSessionRequest{SessionName: "Фармакология 1"})
	require.NoError(t, err)
	_, err = f.sessions.ReplaceRoster(f.ctx, es.ID, []string{"Иванов Иван", "Петрова Анна"})
	require.NoError(t, err)
	return es
}

func eventNames(events []notify.Event) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	return names
}
