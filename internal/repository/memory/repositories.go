package memory

import (
	"context"
	"sort"
	"time"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/repository"
)

// ─── Exam sessions ───────────────────────────────────────────────────────────

type examSessionRepository struct{ c *conn }

func (r *examSessionRepository) withRoster(t *tables, s model.ExamSession) *model.ExamSession {
	s.RosterSize = len(t.roster[s.ID])
	return &s
}

func (r *examSessionRepository) Create(_ context.Context, s *model.ExamSession) error {
	t, unlock := r.c.acquire()
	defer unlock()

	for _, existing := range t.examSessions {
		if existing.SessionName == s.SessionName || existing.JoinCode == s.JoinCode {
			return repository.ErrDuplicate
		}
	}
	s.ID = t.id()
	s.CreatedAt = time.Now().UTC()
	t.examSessions[s.ID] = *s
	return nil
}

func (r *examSessionRepository) GetByID(_ context.Context, id int) (*model.ExamSession, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	s, ok := t.examSessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withRoster(t, s), nil
}

func (r *examSessionRepository) GetByJoinCode(_ context.Context, code string) (*model.ExamSession, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	for _, s := range t.examSessions {
		if s.JoinCode == code {
			return r.withRoster(t, s), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *examSessionRepository) GetByName(_ context.Context, name string) (*model.ExamSession, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	for _, s := range t.examSessions {
		if s.SessionName == name {
			return r.withRoster(t, s), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *examSessionRepository) List(_ context.Context) ([]model.ExamSession, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	list := make([]model.ExamSession, 0, len(t.examSessions))
	for _, s := range t.examSessions {
		list = append(list, *r.withRoster(t, s))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *examSessionRepository) SetOpen(_ context.Context, id int, open bool) (*model.ExamSession, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	s, ok := t.examSessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.IsOpen = open
	t.examSessions[id] = s
	return r.withRoster(t, s), nil
}

// ─── Rosters ─────────────────────────────────────────────────────────────────

type rosterRepository struct{ c *conn }

func (r *rosterRepository) Replace(_ context.Context, sessionID int, entries []model.RosterEntry) error {
	t, unlock := r.c.acquire()
	defer unlock()

	seen := make(map[string]struct{}, len(entries))
	stored := make([]model.RosterEntry, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.FullNameKey]; dup {
			return repository.ErrDuplicate
		}
		seen[e.FullNameKey] = struct{}{}
		e.ID = t.id()
		e.SessionID = sessionID
		stored = append(stored, e)
	}
	t.roster[sessionID] = stored
	return nil
}

func (r *rosterRepository) List(_ context.Context, sessionID int) ([]model.RosterEntry, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	list := append([]model.RosterEntry{}, t.roster[sessionID]...)
	sort.Slice(list, func(i, j int) bool { return list[i].FullNameKey < list[j].FullNameKey })
	return list, nil
}

func (r *rosterRepository) Contains(_ context.Context, sessionID int, nameKey string) (bool, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	for _, e := range t.roster[sessionID] {
		if e.FullNameKey == nameKey {
			return true, nil
		}
	}
	return false, nil
}

// ─── Presence ────────────────────────────────────────────────────────────────

type presenceRepository struct{ c *conn }

func presenceKey(sessionName, studentKey string) string {
	return sessionName + "\x00" + studentKey
}

func (r *presenceRepository) Upsert(_ context.Context, a *model.ActiveSession) error {
	t, unlock := r.c.acquire()
	defer unlock()

	k := presenceKey(a.SessionName, a.StudentKey)
	if existing, ok := t.presence[k]; ok {
		a.ID = existing.ID
		a.StartTime = existing.StartTime
	} else {
		a.ID = t.id()
	}
	t.presence[k] = *a
	return nil
}

func (r *presenceRepository) Touch(_ context.Context, sessionName, studentKey string, now time.Time) (bool, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	k := presenceKey(sessionName, studentKey)
	a, ok := t.presence[k]
	if !ok {
		return false, nil
	}
	a.Status = model.PresenceActive
	a.LastActivity = now
	t.presence[k] = a
	return true, nil
}

func (r *presenceRepository) MarkStale(_ context.Context, cutoff time.Time) ([]string, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	touched := make(map[string]struct{})
	for k, a := range t.presence {
		if a.Status == model.PresenceActive && a.LastActivity.Before(cutoff) {
			a.Status = model.PresenceStale
			t.presence[k] = a
			touched[a.SessionName] = struct{}{}
		}
	}
	names := make([]string, 0, len(touched))
	for name := range touched {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *presenceRepository) Delete(_ context.Context, sessionName, studentKey string) (bool, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	k := presenceKey(sessionName, studentKey)
	if _, ok := t.presence[k]; !ok {
		return false, nil
	}
	delete(t.presence, k)
	return true, nil
}

func (r *presenceRepository) List(_ context.Context, sessionName string) ([]model.ActiveSession, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	list := []model.ActiveSession{}
	for _, a := range t.presence {
		if sessionName == "" || a.SessionName == sessionName {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].StartTime.Equal(list[j].StartTime) {
			return list[i].StartTime.Before(list[j].StartTime)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// ─── Submissions ─────────────────────────────────────────────────────────────

type submissionRepository struct{ c *conn }

func (r *submissionRepository) Create(_ context.Context, s *model.Submission) error {
	t, unlock := r.c.acquire()
	defer unlock()

	if s.ExamSessionID != nil {
		for _, existing := range t.submissions {
			if existing.ExamSessionID != nil && *existing.ExamSessionID == *s.ExamSessionID &&
				existing.StudentKey == s.StudentKey {
				return repository.ErrDuplicate
			}
		}
	}
	s.ID = t.id()
	s.CreatedAt = time.Now().UTC()
	t.submissions[s.ID] = *s
	return nil
}

func (r *submissionRepository) ExistsForStudent(_ context.Context, examSessionID int, studentKey string) (bool, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	for _, s := range t.submissions {
		if s.ExamSessionID != nil && *s.ExamSessionID == examSessionID && s.StudentKey == studentKey {
			return true, nil
		}
	}
	return false, nil
}

func (r *submissionRepository) GetByID(_ context.Context, id int) (*model.Submission, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	s, ok := t.submissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *submissionRepository) List(_ context.Context, f model.SubmissionFilter) ([]model.Submission, int64, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	list := []model.Submission{}
	for _, s := range t.submissions {
		if f.SessionName != "" && s.SessionName != f.SessionName {
			continue
		}
		if f.ExamSessionID != nil && (s.ExamSessionID == nil || *s.ExamSessionID != *f.ExamSessionID) {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })

	total := int64(len(list))
	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PerPage
		if start > len(list) {
			start = len(list)
		}
		end := min(start+f.PerPage, len(list))
		list = list[start:end]
	}
	return list, total, nil
}

// ─── Settings ────────────────────────────────────────────────────────────────

type settingRepository struct{ c *conn }

func (r *settingRepository) Get(_ context.Context) (*model.Settings, error) {
	t, unlock := r.c.acquire()
	defer unlock()

	if t.settings == nil {
		return nil, repository.ErrNotFound
	}
	s := *t.settings
	return &s, nil
}

func (r *settingRepository) Save(_ context.Context, s *model.Settings) error {
	t, unlock := r.c.acquire()
	defer unlock()

	s.UpdatedAt = time.Now().UTC()
	stored := *s
	t.settings = &stored
	return nil
}
