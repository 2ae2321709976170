package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Connect opens the pool, retrying with exponential backoff until maxWait elapses.
// Only opening is retried, configuration errors fail immediately and store
// operations are never retried.
func Connect(ctx context.Context, cfg *PoolConfig, maxWait time.Duration) (*pgxpool.Pool, error) {
	poolConfig, err := cfg.pgxConfig()
	if err != nil {
		return nil, err
	}

	attempt := 0
	pool, err := backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
		attempt++
		return open(ctx, poolConfig)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxWait),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("Database not ready")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
	}

	return pool, nil
}
