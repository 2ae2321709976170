package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/sessionauth/internal/health"
	"github.com/wolfeidau/sessionauth/internal/logger"
	"github.com/wolfeidau/sessionauth/internal/store"
	memorystore "github.com/wolfeidau/sessionauth/internal/store/memory"
	postgresstore "github.com/wolfeidau/sessionauth/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

// setupLogging installs the process logger as the package global and the
// fallback for zerolog.Ctx.
func setupLogging(globals *Globals) zerolog.Logger {
	l := logger.Setup(globals.Debug)
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return l
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString  string        `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	ConnectWait time.Duration `help:"how long to keep retrying the initial connection" default:"30s" env:"SESSIONAUTH_POSTGRES_CONNECT_WAIT"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	if s.MinConns > s.MaxConns {
		return fmt.Errorf("--postgres-min-conns (%d) must not exceed --postgres-max-conns (%d)", s.MinConns, s.MaxConns)
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
	}
}

// connect validates the flags and opens the pool, optionally applying migrations.
func (s *PostgresStoreFlags) connect(ctx context.Context, migrate bool) (*pgxpool.Pool, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate postgres flags: %w", err)
	}

	pool, err := postgresstore.Connect(ctx, s.poolConfig(), s.ConnectWait)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := postgresstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return pool, nil
}

// openStores selects the backend. Postgres backends also return a readiness checker.
func openStores(ctx context.Context, storeType string, pg *PostgresStoreFlags, autoMigrate bool) (store.Stores, []health.Checker, error) {
	switch storeType {
	case "postgres":
		pool, err := pg.connect(ctx, autoMigrate)
		if err != nil {
			return store.Stores{}, nil, err
		}
		log.Info().Bool("auto_migrate", autoMigrate).Msg("Using PostgreSQL stores")
		return store.Stores{
			Users:    postgresstore.NewUserStore(pool),
			Sessions: postgresstore.NewSessionStore(pool),
			Close:    pool.Close,
		}, []health.Checker{health.NewPostgresChecker(pool)}, nil

	case "memory", "":
		log.Warn().Msg("Using in-memory stores, sessions and users are lost on restart")
		return store.Stores{
			Users:    memorystore.NewUserStore(),
			Sessions: memorystore.NewSessionStore(),
		}, nil, nil

	default:
		return store.Stores{}, nil, fmt.Errorf("unknown store type %q", storeType)
	}
}
