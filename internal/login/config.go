package login

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wolfeidau/sessionauth/internal/sessionid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCookieName = "session_id"
	DefaultSessionTTL = 4 * time.Hour
	DefaultCookieTTL  = 30 * time.Minute
)

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite // zero leaves the attribute off
}

// Config configures an Authenticator.
//
// SessionTTL (server-side validity) and CookieTTL (client-side lifetime) are
// independent of each other, see Warnings.
type Config struct {
	SessionTTL time.Duration
	CookieTTL  time.Duration
	Cookie     CookieOptions

	// SensitiveAttributes are profile attribute keys removed on sanitization.
	SensitiveAttributes []string

	// PasswordCost is the bcrypt cost of the hash compared against for unknown emails.
	PasswordCost int

	// IDs generates session identifiers.
	IDs *sessionid.Generator
}

// DefaultConfig returns the default policy: 4h sessions, 30m HttpOnly cookies
// without Secure or SameSite.
func DefaultConfig() Config {
	return Config{
		SessionTTL: DefaultSessionTTL,
		CookieTTL:  DefaultCookieTTL,
		Cookie: CookieOptions{
			Name: DefaultCookieName,
			Path: "/",
		},
		SensitiveAttributes: []string{"password", "password_hash"},
		PasswordCost:        bcrypt.DefaultCost,
		IDs:                 sessionid.Default,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be greater than 0")
	}
	if c.CookieTTL <= 0 {
		return errors.New("cookie TTL must be greater than 0")
	}
	if c.Cookie.Name == "" {
		return errors.New("cookie name is required")
	}
	if c.Cookie.SameSite == http.SameSiteNoneMode && !c.Cookie.Secure {
		return errors.New("SameSite=None requires a Secure cookie")
	}
	return nil
}

// Warnings lists known weaknesses of the configuration so they can be logged at startup.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.SessionTTL != c.CookieTTL {
		warnings = append(warnings, fmt.Sprintf(
			"session TTL (%s) differs from cookie TTL (%s), sessions may outlive or be outlived by their cookie",
			c.SessionTTL, c.CookieTTL))
	}
	if !c.Cookie.Secure {
		warnings = append(warnings, "session cookie is not marked Secure")
	}
	if c.Cookie.SameSite == 0 {
		warnings = append(warnings, "session cookie has no SameSite policy")
	}

	return warnings
}

// ParseSameSite converts "", "lax", "strict" or "none" to an http.SameSite value.
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown SameSite mode %q", s)
	}
}
