package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfeidau/sessionauth/internal/auth"
	memorystore "github.com/wolfeidau/sessionauth/internal/store/memory"
)

const usersYAML = `
- email: jane@example.com
  password: correct horse battery
  display_name: Jane Doe
  attributes:
    team: platform
    roles: [admin, viewer]
- email: bob@example.com
  password: another long one
`

func TestParseUsers(t *testing.T) {
	records, err := parseUsers([]byte(usersYAML))
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "jane@example.com", records[0].Email)
	require.Equal(t, "Jane Doe", records[0].DisplayName)
	require.Equal(t, "platform", records[0].Attributes["team"])
	require.Equal(t, []any{"admin", "viewer"}, records[0].Attributes["roles"])
	require.Nil(t, records[1].Attributes)
}

func TestParseUsers_invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "not a list",
			input:   "email: jane@example.com",
			wantErr: "failed to parse user file",
		},
		{
			name:    "missing password",
			input:   "- email: jane@example.com",
			wantErr: `user 0: Password failed "required"`,
		},
		{
			name:    "short password",
			input:   "- email: jane@example.com\n  password: short",
			wantErr: `user 0: Password failed "min"`,
		},
		{
			name:    "bad email",
			input:   "- email: jane\n  password: long enough",
			wantErr: `user 0: Email failed "email"`,
		},
		{
			name:    "duplicate email",
			input:   "- email: a@example.com\n  password: long enough\n- email: a@example.com\n  password: long enough",
			wantErr: "user 1: email a@example.com duplicates user 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseUsers([]byte(tt.input))
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestReadUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(usersYAML), 0o600))

	records, err := readUserFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, err = readUserFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read user file")
}

func TestProvisionUsers(t *testing.T) {
	records, err := parseUsers([]byte(usersYAML))
	require.NoError(t, err)

	users := memorystore.NewUserStore()

	created, skipped, err := provisionUsers(t.Context(), users, records, bcrypt.MinCost)
	require.NoError(t, err)
	require.Equal(t, 2, created)
	require.Equal(t, 0, skipped)

	user, err := users.GetByEmail(t.Context(), "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", user.DisplayName)
	require.Equal(t, uuid.Version(7), user.ID.Version())
	require.True(t, auth.VerifyPassword(user.PasswordHash, "correct horse battery"))
	require.NotContains(t, user.PasswordHash, "correct horse battery")

	// Running again leaves existing users alone
	created, skipped, err = provisionUsers(t.Context(), users, records, bcrypt.MinCost)
	require.NoError(t, err)
	require.Equal(t, 0, created)
	require.Equal(t, 2, skipped)
}

func TestSessionsRevokeValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     SessionsRevokeCmd
		wantErr string
	}{
		{name: "no target", wantErr: "one of --session-id, --user-id or --email is required"},
		{name: "bad user id", cmd: SessionsRevokeCmd{UserID: "nope"}, wantErr: "invalid --user-id"},
		{name: "session id", cmd: SessionsRevokeCmd{SessionID: "00112233-4455-4677-8899-aabbccddeeff"}},
		{name: "email", cmd: SessionsRevokeCmd{Email: "jane@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestServeAuthConfig(t *testing.T) {
	cmd := ServeCmd{
		SessionTTL:     4 * time.Hour,
		CookieTTL:      30 * time.Minute,
		CookieName:     "sid",
		CookieSecure:   true,
		CookieSameSite: "strict",
	}

	cfg, err := cmd.authConfig()
	require.NoError(t, err)
	require.Equal(t, "sid", cfg.Cookie.Name)
	require.True(t, cfg.Cookie.Secure)

	cmd.CookieSameSite = "none"
	cmd.CookieSecure = false
	_, err = cmd.authConfig()
	require.Error(t, err)
}
