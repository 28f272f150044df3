// Package memory is an in-process Store used by tests and single-node demo
// runs (STORE_DRIVER=memory). Transactions are serialized by one mutex and
// rolled back by restoring a snapshot.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/repository"
)

type tables struct {
	nextID       int
	examSessions map[int]model.ExamSession
	roster       map[int][]model.RosterEntry
	presence     map[string]model.ActiveSession
	submissions  map[int]model.Submission
	settings     *model.Settings
}

func (t *tables) clone() *tables {
	c := &tables{
		nextID:       t.nextID,
		examSessions: maps.Clone(t.examSessions),
		roster:       make(map[int][]model.RosterEntry, len(t.roster)),
		presence:     maps.Clone(t.presence),
		submissions:  maps.Clone(t.submissions),
	}
	for k, v := range t.roster {
		c.roster[k] = append([]model.RosterEntry(nil), v...)
	}
	if t.settings != nil {
		s := *t.settings
		c.settings = &s
	}
	return c
}

func (t *tables) id() int {
	t.nextID++
	return t.nextID
}

// Store is a mutex-guarded in-memory repository.Store.
type Store struct {
	mu sync.Mutex
	t  *tables
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{t: &tables{
		examSessions: make(map[int]model.ExamSession),
		roster:       make(map[int][]model.RosterEntry),
		presence:     make(map[string]model.ActiveSession),
		submissions:  make(map[int]model.Submission),
	}}
}

// Repos returns repositories that lock the store per call.
func (s *Store) Repos() repository.Repos {
	return s.bind(false)
}

// WithTx holds the store lock for the whole of fn and restores the previous
// state if fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(r repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	if err := fn(s.bind(true)); err != nil {
		s.t = snapshot
		return err
	}
	return nil
}

func (s *Store) bind(held bool) repository.Repos {
	c := &conn{store: s, held: held}
	return repository.Repos{
		ExamSessions: &examSessionRepository{c},
		Rosters:      &rosterRepository{c},
		Presence:     &presenceRepository{c},
		Submissions:  &submissionRepository{c},
		Settings:     &settingRepository{c},
		Locks:        noopLocker{},
	}
}

// conn gives repositories access to the tables, taking the store lock
// unless the enclosing transaction already holds it.
type conn struct {
	store *Store
	held  bool
}

func (c *conn) acquire() (*tables, func()) {
	if c.held {
		return c.store.t, func() {}
	}
	c.store.mu.Lock()
	return c.store.t, c.store.mu.Unlock
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) error { return nil }
