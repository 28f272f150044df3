// Package notify delivers session-scoped realtime events. Delivery is
// best-effort: publish failures are logged and never surface to callers.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/config"
)

// Event names.
const (
	EventActiveUpdated     = "active_updated"
	EventStudentFinished   = "student_finished"
	EventSubmissionCreated = "submission_created"
	EventSettingsUpdated   = "settings_updated"
)

// Event is one notification addressed to a session room.
type Event struct {
	Room    string `json:"room"`
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// NewEvent addresses an event to the room of sessionName.
func NewEvent(sessionName, name string, payload any) Event {
	if payload == nil {
		payload = struct{}{}
	}
	return Event{Room: config.CacheKey.Room(sessionName), Name: name, Payload: payload}
}

// Envelope is the wire shape of an event on the pub/sub channel.
type Envelope struct {
	Event   string          `json:"event"`
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// Publisher emits events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}

// RedisBus publishes and subscribes on per-room Redis channels.
type RedisBus struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisBus creates a new RedisBus.
func NewRedisBus(rdb *redis.Client, log zerolog.Logger) *RedisBus {
	return &RedisBus{rdb: rdb, log: log.With().Str("component", "notify").Logger()}
}

func (p *RedisBus) Publish(ctx context.Context, events ...Event) {
	for _, ev := range events {
		data, err := Encode(ev)
		if err != nil {
			p.log.Error().Err(err).Str("event", ev.Name).Msg("Failed to encode event")
			continue
		}
		channel := config.CacheKey.RoomChannel(ev.Room)
		if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
			p.log.Warn().Err(err).Str("channel", channel).Str("event", ev.Name).Msg("Failed to publish event")
		}
	}
}

// Encode renders an event as its wire envelope.
func Encode(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Event:   ev.Name,
		Room:    ev.Room,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	})
}

// Recorder keeps published events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, events ...Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the names of everything published so far.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		names = append(names, ev.Name)
	}
	return names
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
