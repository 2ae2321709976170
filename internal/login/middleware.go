package login

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/sessionauth/internal/auth"
)

// Middleware bootstraps the authentication state of every request and attaches
// it to the request context, see auth.FromContext.
//
// A store failure ends the request with a generic 500, details are only logged.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, err := a.Bootstrap(w, r)
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("Session bootstrap failed")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}` + "\n"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithContext(r.Context(), ac)))
		})
	}
}
