package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/notify"
	"github.com/stemsi/dictant-backend/internal/ticket"
)

func TestSettings_EmptyBeforeFirstSave(t *testing.T) {
	f := newFixture(t)
	v, err := f.settings.GetSettings(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, v.Drugs)
	assert.Equal(t, 0, v.MasterSize)
	assert.NotNil(t, v.IndicationSets)

	_, err = f.settings.AnswerKey(f.ctx)
	assert.ErrorIs(t, err, ErrMasterNotLoaded)
}

func TestSettings_PatchKeepsUnsetFields(t *testing.T) {
	f := newFixture(t)
	f.prepare(t)

	name := "Весенняя сессия"
	v, events, err := f.settings.UpdateSettings(f.ctx, model.UpdateSettingsRequest{SessionName: &name})
	require.NoError(t, err)
	assert.Equal(t, []string{"аторвастатин"}, v.Drugs)
	assert.Equal(t, 20, v.Duration)
	assert.Equal(t, name, v.SessionName)
	assert.Equal(t, 1, v.MasterSize)

	require.Len(t, events, 1)
	assert.Equal(t, notify.EventSettingsUpdated, events[0].Name)
	assert.Equal(t, name, events[0].Room)
	payload, ok := events[0].Payload.(notify.SettingsUpdated)
	require.True(t, ok)
	assert.Empty(t, payload.Drugs)
}

func TestSettings_ResolutionErrorLeavesSettingsUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		drugs []string
		kind  ticket.ProblemKind
	}{
		{"not found", []string{"аторвастатин", "розувастатин"}, ticket.ProblemNotFound},
		{"duplicate", []string{"аторвастатин", "Липримар"}, ticket.ProblemDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.prepare(t)

			duration := 45
			_, events, err := f.settings.UpdateSettings(f.ctx, model.UpdateSettingsRequest{Drugs: &tt.drugs, Duration: &duration})
			var resErr *ResolutionError
			require.ErrorAs(t, err, &resErr)
			require.Len(t, resErr.Problems, 1)
			assert.Equal(t, tt.kind, resErr.Problems[0].Kind)
			assert.Equal(t, 1, resErr.Problems[0].Index)
			assert.Contains(t, resErr.Fields(), "drugs[1]")
			assert.Empty(t, events)

			v, err := f.settings.GetSettings(f.ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"аторвастатин"}, v.Drugs)
			assert.Equal(t, 20, v.Duration)
		})
	}
}

func TestSettings_AmbiguousTerm(t *testing.T) {
	f := newFixture(t)
	key := atorvastatinKey()
	key["d2"] = model.DrugEntry{DrugID: "d2", MNN: "atorvastatin calcium", MNNRu: "аторвастатин"}
	_, err := f.settings.ReplaceMaster(f.ctx, key, 0)
	require.NoError(t, err)

	drugs := []string{"аторвастатин"}
	_, _, err = f.settings.UpdateSettings(f.ctx, model.UpdateSettingsRequest{Drugs: &drugs})
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ticket.ProblemAmbiguous, resErr.Problems[0].Kind)
	assert.Equal(t, []string{"d1", "d2"}, resErr.Problems[0].DrugIDs)
}

func TestSettings_LatinTermRejected(t *testing.T) {
	f := newFixture(t)
	f.prepare(t)

	drugs := []string{"atorvastatin"}
	_, _, err := f.settings.UpdateSettings(f.ctx, model.UpdateSettingsRequest{Drugs: &drugs})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "drugs[0]")
}

func TestSettings_ReplaceMasterReportsOrphans(t *testing.T) {
	f := newFixture(t)
	f.prepare(t)

	res, err := f.settings.ReplaceMaster(f.ctx, model.AnswerKey{"d9": {DrugID: "d9", MNNRu: "варфарин"}}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.OrphanTicket, 1)
	assert.Equal(t, "d1", res.OrphanTicket[0].DrugID)

	v, err := f.settings.GetSettings(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"аторвастатин"}, v.Drugs)

	_, err = f.settings.ReplaceMaster(f.ctx, model.AnswerKey{}, 3)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
