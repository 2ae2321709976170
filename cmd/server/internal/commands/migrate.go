package commands

import (
	"context"
)

type MigrateCmd struct {
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogging(globals)

	pool, err := c.PostgresStore.connect(ctx, true)
	if err != nil {
		return err
	}
	defer pool.Close()

	log.Info().Msg("Database is up to date")
	return nil
}
