package auth

import (
	"context"
	"maps"

	"github.com/wolfeidau/sessionauth/internal/models"
)

type contextKey string

const authContextKey contextKey = "auth"

// Context is the authentication state of a single request. It holds at most one
// sanitized profile and the session it was loaded from, and is passed explicitly
// through the handler chain rather than shared between requests.
type Context struct {
	profile   *models.Profile
	sessionID string
}

// Anonymous returns an unauthenticated context.
func Anonymous() *Context {
	return &Context{}
}

// IsAuthenticated returns true if a profile is loaded.
func (c *Context) IsAuthenticated() bool {
	return c != nil && c.profile != nil
}

// CurrentUser returns a copy of the loaded profile, or nil when unauthenticated.
func (c *Context) CurrentUser() *models.Profile {
	if !c.IsAuthenticated() {
		return nil
	}
	profile := *c.profile
	profile.Attributes = maps.Clone(c.profile.Attributes)
	return &profile
}

// SessionID returns the session the profile was loaded from.
func (c *Context) SessionID() string {
	if c == nil {
		return ""
	}
	return c.sessionID
}

// SetAuthenticated loads a sanitized profile and its session.
func (c *Context) SetAuthenticated(profile *models.Profile, sessionID string) {
	c.profile = profile
	c.sessionID = sessionID
}

// Clear drops the loaded profile.
func (c *Context) Clear() {
	c.profile = nil
	c.sessionID = ""
}

// WithContext attaches the authentication state to ctx.
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// FromContext returns the authentication state attached to ctx,
// or an anonymous context if none was attached.
func FromContext(ctx context.Context) *Context {
	ac, ok := ctx.Value(authContextKey).(*Context)
	if !ok || ac == nil {
		return Anonymous()
	}
	return ac
}
