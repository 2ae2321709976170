package website

import (
	"net/http"
	"strings"
	"time"

	"filippo.io/csrf"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/sessionauth/internal/auth"
	"github.com/wolfeidau/sessionauth/internal/health"
	httpmiddleware "github.com/wolfeidau/sessionauth/internal/http"
	"github.com/wolfeidau/sessionauth/internal/login"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Auth        *login.Authenticator
	Logger      zerolog.Logger
	CORSOrigins []string
	TrustProxy  bool
	Checkers    []health.Checker
}

// NewRouter builds the server handler.
//
// Probes are served without session handling. Everything else is bootstrapped
// by the authenticator, /api/ routes get CORS and the rest get cross-origin
// request protection.
func NewRouter(cfg RouterConfig) http.Handler {
	h := NewHandler(cfg.Auth)

	app := http.NewServeMux()
	app.HandleFunc("POST /login", h.Login)
	app.HandleFunc("POST /logout", h.Logout)
	app.Handle("GET /api/me", auth.RequireAuth(http.HandlerFunc(h.Me)))

	sessions := cfg.Auth.Middleware()(app)
	protection := csrf.New()
	withCORS := corsHandler(cfg.CORSOrigins, sessions)
	withCSRF := protection.Handler(sessions)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", health.Live())
	root.HandleFunc("GET /readyz", health.Ready(2*time.Second, cfg.Checkers...))
	root.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIRoute(r.URL.Path) {
			withCORS.ServeHTTP(w, r)
			return
		}
		withCSRF.ServeHTTP(w, r)
	}))

	var handler http.Handler = root
	handler = httpmiddleware.ClientIPMiddleware(cfg.TrustProxy)(handler)
	handler = httpmiddleware.AccessLog(cfg.Logger)(handler)

	return handler
}

// isAPIRoute returns true if the path is an API route that needs CORS instead of CSRF
func isAPIRoute(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// corsHandler allows credentialed cross-origin calls from the configured origins.
func corsHandler(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true, // Required for cookie-based authentication
	})
	return middleware.Handler(h)
}
