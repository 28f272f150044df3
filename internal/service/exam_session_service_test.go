package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/textnorm"
)

func TestExamSessions_Create(t *testing.T) {
	f := newFixture(t)

	es, err := f.sessions.Create(f.ctx, model.CreateExamSessionRequest{SessionName: "  Группа   12 "})
	require.NoError(t, err)
	assert.Equal(t, "Группа 12", es.SessionName)
	assert.Len(t, es.JoinCode, textnorm.JoinCodeLength)
	assert.True(t, es.IsOpen)

	_, err = f.sessions.Create(f.ctx, model.CreateExamSessionRequest{SessionName: "Группа 12"})
	assert.ErrorIs(t, err, ErrSessionNameTaken)

	closed := false
	other, err := f.sessions.Create(f.ctx, model.CreateExamSessionRequest{SessionName: "Группа 13", IsOpen: &closed})
	require.NoError(t, err)
	assert.False(t, other.IsOpen)
	assert.NotEqual(t, es.JoinCode, other.JoinCode)

	list, err := f.sessions.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestExamSessions_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.sessions.Get(f.ctx, 404)
	assert.ErrorIs(t, err, ErrExamSessionNotFound)
	_, err = f.sessions.SetOpen(f.ctx, 404, true)
	assert.ErrorIs(t, err, ErrExamSessionNotFound)
	_, err = f.sessions.ReplaceRoster(f.ctx, 404, []string{"Иванов"})
	assert.ErrorIs(t, err, ErrExamSessionNotFound)
	_, err = f.sessions.Roster(f.ctx, 404)
	assert.ErrorIs(t, err, ErrExamSessionNotFound)
}

func TestExamSessions_ReplaceRoster(t *testing.T) {
	f := newFixture(t)
	es, err := f.sessions.Create(f.ctx, model.CreateExamSessionRequest{SessionName: "Группа 1"})
	require.NoError(t, err)

	res, err := f.sessions.ReplaceRoster(f.ctx, es.ID, []string{"Иванов  Иван", "", "иванов иван", "Петрова Анна", "   "})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Loaded)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 2, res.Blank)

	roster, err := f.sessions.Roster(f.ctx, es.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Иванов Иван", roster[0].FullName)
	assert.Equal(t, "иванов иван", roster[0].FullNameKey)

	got, err := f.sessions.Get(f.ctx, es.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RosterSize)

	_, err = f.sessions.ReplaceRoster(f.ctx, es.ID, []string{" ", ""})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	roster, err = f.sessions.Roster(f.ctx, es.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 2)
}
