package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/sessionauth/internal/auth"
	"github.com/wolfeidau/sessionauth/internal/login"
	"github.com/wolfeidau/sessionauth/internal/telemetry"
	"github.com/wolfeidau/sessionauth/internal/website"
)

type ServeCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"SESSIONAUTH_LISTEN"`
	Cert   string `help:"path to TLS cert file, serves plain HTTP when empty" default:"" env:"SESSIONAUTH_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"SESSIONAUTH_TLS_KEY"`

	// Session configuration
	SessionTTL     time.Duration `help:"server-side session lifetime" default:"4h" env:"SESSIONAUTH_SESSION_TTL"`
	CookieTTL      time.Duration `help:"session cookie Max-Age" default:"30m" env:"SESSIONAUTH_COOKIE_TTL"`
	CookieName     string        `help:"session cookie name" default:"session_id" env:"SESSIONAUTH_COOKIE_NAME"`
	CookieDomain   string        `help:"session cookie domain" default:"" env:"SESSIONAUTH_COOKIE_DOMAIN"`
	CookieSecure   bool          `help:"mark the session cookie Secure" default:"false" env:"SESSIONAUTH_COOKIE_SECURE"`
	CookieSameSite string        `help:"session cookie SameSite (lax, strict, none or empty)" default:"" env:"SESSIONAUTH_COOKIE_SAMESITE" enum:",lax,strict,none"`
	ReapInterval   time.Duration `help:"interval for deleting expired sessions, zero disables" default:"10m" env:"SESSIONAUTH_REAP_INTERVAL"`
	Users          string        `help:"YAML file of users to provision on startup" default:"" env:"SESSIONAUTH_USERS_FILE"`

	// HTTP configuration
	TrustProxy  bool     `help:"trust X-Forwarded-For and X-Real-IP for the client address" default:"false" env:"SESSIONAUTH_TRUST_PROXY"`
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"https://localhost" env:"SESSIONAUTH_CORS_ORIGINS"`

	// Telemetry
	Tracing          bool    `help:"enable tracing and metrics export" default:"false" env:"SESSIONAUTH_TRACING"`
	TraceSampleRatio float64 `help:"fraction of root spans sampled" default:"1.0" env:"SESSIONAUTH_TRACE_SAMPLE_RATIO"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"SESSIONAUTH_STORE_TYPE" enum:"memory,postgres"`
	AutoMigrate   bool               `help:"run database migrations on startup" default:"false" env:"SESSIONAUTH_POSTGRES_AUTO_MIGRATE"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

// authConfig maps the flags onto the authenticator configuration.
func (c *ServeCmd) authConfig() (login.Config, error) {
	sameSite, err := login.ParseSameSite(c.CookieSameSite)
	if err != nil {
		return login.Config{}, err
	}

	cfg := login.DefaultConfig()
	cfg.SessionTTL = c.SessionTTL
	cfg.CookieTTL = c.CookieTTL
	cfg.Cookie.Name = c.CookieName
	cfg.Cookie.Domain = c.CookieDomain
	cfg.Cookie.Secure = c.CookieSecure
	cfg.Cookie.SameSite = sameSite

	if err := cfg.Validate(); err != nil {
		return login.Config{}, err
	}
	return cfg, nil
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogging(globals)

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	cfg, err := c.authConfig()
	if err != nil {
		return fmt.Errorf("invalid session configuration: %w", err)
	}
	for _, warning := range cfg.Warnings() {
		log.Warn().Msg(warning)
	}

	if c.Tracing {
		log.Info().Float64("sample_ratio", c.TraceSampleRatio).Msg("Tracing is enabled")
		shutdown, err := telemetry.Setup(ctx, telemetry.Config{
			ServiceName: "sessionauth",
			Version:     globals.Version,
			SampleRatio: c.TraceSampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, checkers, err := openStores(ctx, c.StoreType, &c.PostgresStore, c.AutoMigrate)
	if err != nil {
		return err
	}
	if stores.Close != nil {
		defer stores.Close()
	}

	if c.Users != "" {
		records, err := readUserFile(c.Users)
		if err != nil {
			return err
		}
		created, skipped, err := provisionUsers(ctx, stores.Users, records, 0)
		if err != nil {
			return err
		}
		log.Info().Int("created", created).Int("skipped", skipped).Str("file", c.Users).Msg("Provisioned users")
	}

	if c.ReapInterval > 0 {
		reaper := auth.NewReaper(ctx, stores.Sessions, c.ReapInterval)
		defer reaper.Stop()
	}

	authenticator := login.New(stores.Users, stores.Sessions, cfg)

	handler := website.NewRouter(website.RouterConfig{
		Auth:        authenticator,
		Logger:      log,
		CORSOrigins: c.CORSOrigins,
		TrustProxy:  c.TrustProxy,
		Checkers:    checkers,
	})

	srv := configureHTTPServer(c.Listen, handler)
	return c.serve(ctx, srv, log)
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func (c *ServeCmd) serve(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	tls := c.Cert != "" || c.Key != ""
	if tls {
		if c.Cert == "" || c.Key == "" {
			return errors.New("TLS requires both --cert and --key")
		}
		if _, err := os.Stat(c.Cert); err != nil {
			return fmt.Errorf("TLS certificate not found at %s: %w", c.Cert, err)
		}
		if _, err := os.Stat(c.Key); err != nil {
			return fmt.Errorf("TLS key not found at %s: %w", c.Key, err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Bool("tls", tls).Str("store", c.StoreType).Msg("Starting HTTP server")
		if tls {
			errCh <- srv.ListenAndServeTLS(c.Cert, c.Key)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
