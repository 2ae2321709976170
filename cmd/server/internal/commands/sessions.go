package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/sessionauth/internal/login"
)

type SessionsCmd struct {
	Purge  SessionsPurgeCmd  `cmd:"" help:"Delete expired and inactive sessions"`
	Revoke SessionsRevokeCmd `cmd:"" help:"Deactivate a session or every session of a user"`
}

type SessionsPurgeCmd struct {
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *SessionsPurgeCmd) Run(ctx context.Context, globals *Globals) error {
	setupLogging(globals)

	stores, _, err := openStores(ctx, "postgres", &c.PostgresStore, false)
	if err != nil {
		return err
	}
	defer stores.Close()

	n, err := stores.Sessions.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}

	log.Info().Int("deleted", n).Msg("Purged sessions")
	return nil
}

type SessionsRevokeCmd struct {
	SessionID string `help:"session id to revoke" xor:"target"`
	UserID    string `help:"revoke every session of this user id" xor:"target"`
	Email     string `help:"revoke every session of the user with this email" xor:"target"`

	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *SessionsRevokeCmd) Validate() error {
	if c.SessionID == "" && c.UserID == "" && c.Email == "" {
		return errors.New("one of --session-id, --user-id or --email is required")
	}
	if c.UserID != "" {
		if _, err := uuid.Parse(c.UserID); err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
	}
	return nil
}

func (c *SessionsRevokeCmd) Run(ctx context.Context, globals *Globals) error {
	setupLogging(globals)

	stores, _, err := openStores(ctx, "postgres", &c.PostgresStore, false)
	if err != nil {
		return err
	}
	defer stores.Close()

	authenticator := login.New(stores.Users, stores.Sessions, login.DefaultConfig())

	if c.SessionID != "" {
		if err := authenticator.RevokeSession(ctx, c.SessionID); err != nil {
			return err
		}
		log.Info().Str("session_id", c.SessionID).Msg("Revoked session")
		return nil
	}

	userID, err := c.resolveUserID(ctx, authenticator)
	if err != nil {
		return err
	}

	n, err := authenticator.RevokeUser(ctx, userID)
	if err != nil {
		return err
	}

	log.Info().Str("user_id", userID.String()).Int("revoked", n).Msg("Revoked user sessions")
	return nil
}

func (c *SessionsRevokeCmd) resolveUserID(ctx context.Context, authenticator *login.Authenticator) (uuid.UUID, error) {
	if c.UserID != "" {
		return uuid.Parse(c.UserID)
	}

	profile, err := authenticator.ResolveProfileByEmail(ctx, c.Email)
	if err != nil {
		return uuid.Nil, err
	}
	return profile.ID, nil
}
