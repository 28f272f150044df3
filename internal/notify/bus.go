package notify

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/dictant-backend/internal/config"
)

// subscriberBuffer bounds how far a slow subscriber may lag before events
// are dropped for it.
const subscriberBuffer = 64

// Subscriber delivers encoded envelopes for one room, or for every room
// when room is empty. The channel closes when ctx ends or the returned
// cancel func is called.
type Subscriber interface {
	Subscribe(ctx context.Context, room string) (<-chan []byte, func(), error)
}

// Bus is both ends of the notification channel.
type Bus interface {
	Publisher
	Subscriber
}

// Subscribe listens on the room channel, or on every room channel when
// room is empty.
func (p *RedisBus) Subscribe(ctx context.Context, room string) (<-chan []byte, func(), error) {
	var pubsub *redis.PubSub
	if room == "" {
		pubsub = p.rdb.PSubscribe(ctx, config.CacheKey.RoomChannelPattern())
	} else {
		pubsub = p.rdb.Subscribe(ctx, config.CacheKey.RoomChannel(room))
	}
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan []byte, subscriberBuffer)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					p.log.Warn().Str("channel", msg.Channel).Msg("Subscriber lagging, event dropped")
				}
			}
		}
	}()
	return out, cancel, nil
}

// LocalBus fans events out in-process. It serves single-instance
// deployments without Redis and tests.
type LocalBus struct {
	mu   sync.Mutex
	subs map[*localSub]struct{}
}

type localSub struct {
	room string
	ch   chan []byte
}

// NewLocalBus creates an empty LocalBus.
func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[*localSub]struct{})}
}

func (b *LocalBus) Publish(_ context.Context, events ...Event) {
	for _, ev := range events {
		data, err := Encode(ev)
		if err != nil {
			continue
		}
		b.mu.Lock()
		for s := range b.subs {
			if s.room != "" && s.room != ev.Room {
				continue
			}
			select {
			case s.ch <- data:
			default:
			}
		}
		b.mu.Unlock()
	}
}

func (b *LocalBus) Subscribe(ctx context.Context, room string) (<-chan []byte, func(), error) {
	s := &localSub{ch: make(chan []byte, subscriberBuffer)}
	if room != "" {
		s.room = config.CacheKey.Room(room)
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, s)
		close(s.ch)
		b.mu.Unlock()
	}()
	return s.ch, cancel, nil
}
