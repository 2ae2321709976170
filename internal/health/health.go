// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type status struct {
	Status string   `json:"status"`
	Failed []string `json:"failed,omitempty"`
}

// Live always reports ok while the process is serving.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, status{Status: "ok"})
	}
}

// Ready runs every checker and reports 503 with the names of the failing ones.
// Error details are logged, not returned.
func Ready(timeout time.Duration, checkers ...Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		var failed []string
		for _, ch := range checkers {
			if err := ch.Check(ctx); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("checker", ch.Name()).Msg("Readiness check failed")
				failed = append(failed, ch.Name())
			}
		}

		if len(failed) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, status{Status: "not_ready", Failed: failed})
			return
		}

		writeStatus(w, http.StatusOK, status{Status: "ready"})
	}
}

func writeStatus(w http.ResponseWriter, code int, body status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
