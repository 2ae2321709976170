package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/sessionauth/internal/store"
	"github.com/wolfeidau/sessionauth/internal/telemetry"
)

// Reaper periodically deletes expired and inactive sessions.
// Validity never depends on the reaper, the store query excludes dead rows on its own.
type Reaper struct {
	sessions store.SessionStore
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReaper creates a reaper that runs every interval.
// The reaper starts a background goroutine that runs until Stop() is called.
func NewReaper(ctx context.Context, sessions store.SessionStore, interval time.Duration) *Reaper {
	reaperCtx, cancel := context.WithCancel(ctx)

	r := &Reaper{
		sessions: sessions,
		interval: interval,
		ctx:      reaperCtx,
		cancel:   cancel,
	}

	r.wg.Add(1)
	go r.loop()

	return r
}

// Stop gracefully stops the background goroutine.
func (r *Reaper) Stop() {
	r.cancel()
	r.wg.Wait()
}

func (r *Reaper) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			log.Info().Msg("Session reaper stopped")
			return

		case <-ticker.C:
			if _, err := r.Reap(r.ctx); err != nil {
				log.Error().Err(err).Msg("Failed to reap sessions")
			}
		}
	}
}

// Reap deletes expired and inactive sessions once.
func (r *Reaper) Reap(ctx context.Context) (int, error) {
	count, err := r.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}

	telemetry.GetMetrics().SessionsReapedTotal.Add(ctx, int64(count))
	log.Debug().Int("count", count).Msg("Reaped sessions")

	return count, nil
}
