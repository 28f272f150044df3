package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/notify"
)

// Sweeper marks idle presence records stale and reports the resulting events.
type Sweeper interface {
	SweepStale(ctx context.Context) ([]notify.Event, error)
}

// StaleWorker periodically sweeps presence so monitors see students drop to
// stale even when no admin is polling the active list.
type StaleWorker struct {
	sweeper  Sweeper
	events   notify.Publisher
	interval time.Duration
	log      zerolog.Logger
}

func NewStaleWorker(sweeper Sweeper, events notify.Publisher, interval time.Duration, log zerolog.Logger) *StaleWorker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &StaleWorker{
		sweeper:  sweeper,
		events:   events,
		interval: interval,
		log:      log.With().Str("component", "stale_worker").Logger(),
	}
}

// Start blocks until ctx is cancelled.
func (w *StaleWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("StaleWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("StaleWorker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *StaleWorker) sweep(ctx context.Context) {
	events, err := w.sweeper.SweepStale(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Stale sweep failed")
		}
		return
	}
	if len(events) > 0 {
		w.events.Publish(ctx, events...)
	}
}
