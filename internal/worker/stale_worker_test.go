package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/dictant-backend/internal/notify"
)

type fakeSweeper struct {
	calls  atomic.Int32
	events []notify.Event
	err    error
}

func (f *fakeSweeper) SweepStale(context.Context) ([]notify.Event, error) {
	f.calls.Add(1)
	return f.events, f.err
}

func TestStaleWorker_Sweep(t *testing.T) {
	tests := []struct {
		name    string
		sweeper *fakeSweeper
		want    []string
	}{
		{
			name:    "publishes sweep events",
			sweeper: &fakeSweeper{events: []notify.Event{notify.NewEvent("Группа 1", notify.EventActiveUpdated, nil)}},
			want:    []string{notify.EventActiveUpdated},
		},
		{
			name:    "nothing stale",
			sweeper: &fakeSweeper{},
		},
		{
			name:    "sweep error",
			sweeper: &fakeSweeper{err: errors.New("db down")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec notify.Recorder
			w := NewStaleWorker(tt.sweeper, &rec, time.Second, zerolog.Nop())
			w.sweep(context.Background())

			assert.Equal(t, int32(1), tt.sweeper.calls.Load())
			if tt.want == nil {
				assert.Empty(t, rec.Events())
			} else {
				assert.Equal(t, tt.want, rec.Names())
			}
		})
	}
}

func TestStaleWorker_StartStopsOnCancel(t *testing.T) {
	sweeper := &fakeSweeper{}
	var rec notify.Recorder
	w := NewStaleWorker(sweeper, &rec, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
