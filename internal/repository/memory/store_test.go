package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/repository"
)

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Repos().Settings.Save(ctx, &model.Settings{Duration: 10}))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(r repository.Repos) error {
		require.NoError(t, r.Settings.Save(ctx, &model.Settings{Duration: 99}))
		require.NoError(t, r.ExamSessions.Create(ctx, &model.ExamSession{SessionName: "S", JoinCode: "C"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Repos().Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Duration)
	list, _ := s.Repos().ExamSessions.List(ctx)
	assert.Empty(t, list)
}

func TestExamSessions_Unique(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Repos()
	require.NoError(t, r.ExamSessions.Create(ctx, &model.ExamSession{SessionName: "S1", JoinCode: "A"}))
	assert.ErrorIs(t, r.ExamSessions.Create(ctx, &model.ExamSession{SessionName: "S1", JoinCode: "B"}), repository.ErrDuplicate)
	assert.ErrorIs(t, r.ExamSessions.Create(ctx, &model.ExamSession{SessionName: "S2", JoinCode: "A"}), repository.ErrDuplicate)

	_, err := r.ExamSessions.GetByJoinCode(ctx, "Z")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRoster_ReplaceAndUnique(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Repos()
	require.NoError(t, r.Rosters.Replace(ctx, 1, []model.RosterEntry{{FullName: "Иванов", FullNameKey: "иванов"}}))
	require.NoError(t, r.Rosters.Replace(ctx, 1, []model.RosterEntry{{FullName: "Петров", FullNameKey: "петров"}}))

	ok, _ := r.Rosters.Contains(ctx, 1, "иванов")
	assert.False(t, ok)
	ok, _ = r.Rosters.Contains(ctx, 1, "петров")
	assert.True(t, ok)

	err := r.Rosters.Replace(ctx, 1, []model.RosterEntry{{FullNameKey: "a"}, {FullNameKey: "a"}})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestPresence_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Repos()
	now := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)

	a := &model.ActiveSession{StudentName: "Иванов", StudentKey: "иванов", SessionName: "S",
		StartTime: now, LastActivity: now, Status: model.PresenceActive}
	require.NoError(t, r.Presence.Upsert(ctx, a))

	names, err := r.Presence.MarkStale(ctx, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, []string{"S"}, names)

	names, _ = r.Presence.MarkStale(ctx, now.Add(time.Second))
	assert.Empty(t, names)

	ok, _ := r.Presence.Touch(ctx, "S", "иванов", now.Add(time.Minute))
	assert.True(t, ok)
	ok, _ = r.Presence.Touch(ctx, "S", "петров", now)
	assert.False(t, ok)

	again := &model.ActiveSession{StudentName: "Иванов", StudentKey: "иванов", SessionName: "S",
		StartTime: now.Add(time.Hour), LastActivity: now.Add(time.Hour), Status: model.PresenceActive}
	require.NoError(t, r.Presence.Upsert(ctx, again))
	assert.Equal(t, a.ID, again.ID)
	assert.True(t, now.Equal(again.StartTime))

	list, _ := r.Presence.List(ctx, "S")
	require.Len(t, list, 1)
	assert.Equal(t, model.PresenceActive, list[0].Status)

	ok, _ = r.Presence.Delete(ctx, "S", "иванов")
	assert.True(t, ok)
	ok, _ = r.Presence.Delete(ctx, "S", "иванов")
	assert.False(t, ok)
}

func TestSubmissions_SingleAttemptAndPaging(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Repos()
	examID := 7

	require.NoError(t, r.Submissions.Create(ctx, &model.Submission{ExamSessionID: &examID, StudentKey: "иванов", SessionName: "S"}))
	err := r.Submissions.Create(ctx, &model.Submission{ExamSessionID: &examID, StudentKey: "иванов", SessionName: "S"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, r.Submissions.Create(ctx, &model.Submission{ExamSessionID: &examID, StudentKey: k, SessionName: "S"}))
	}
	exists, _ := r.Submissions.ExistsForStudent(ctx, examID, "иванов")
	assert.True(t, exists)

	page, total, err := r.Submissions.List(ctx, model.SubmissionFilter{SessionName: "S", Page: 2, PerPage: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 1)
	assert.Equal(t, "иванов", page[0].StudentKey)

	all, _, _ := r.Submissions.List(ctx, model.SubmissionFilter{})
	require.Len(t, all, 4)
	assert.Equal(t, "c", all[0].StudentKey)
}
