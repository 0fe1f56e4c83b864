// Package httpserver provides the HTTP/HTTPS server for sessgate.
package httpserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/sessgate/internal/server/httpserver/handler"
	"github.com/yndnr/sessgate/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler dispatches non-upgrade requests and authorizes upgrades.
	Handler *handler.Handler

	// StaticPath is served ahead of routing.
	StaticPath string

	// Security configures the response headers.
	Security SecurityConfig

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// LoginLimiter throttles the login endpoints per client IP. Nil disables it.
	LoginLimiter Limiter

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
//
// Upgrade requests of any protocol on any path are split off first and go straight to the
// upgrade handler without the header or CORS middleware. Everything else
// passes Static, then the login limiter, then the dispatcher.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	var dispatch http.Handler = cfg.Handler
	if cfg.LoginLimiter != nil {
		limited := RateLimit(cfg.LoginLimiter, log)(cfg.Handler)
		mux := http.NewServeMux()
		mux.Handle("GET /api/login", limited)
		mux.Handle("GET /login", limited)
		mux.Handle("/", cfg.Handler)
		dispatch = mux
	}

	mainHandler := Chain(dispatch,
		Recover(log),
		RequestID(),
		Audit(log),
		SecurityHeaders(cfg.Security),
		CORS(cfg.CORSAllowedOrigins),
		Middleware(handler.Static(cfg.StaticPath)),
	)

	upgradeHandler := Chain(cfg.Handler.Upgrade(),
		Recover(log),
		RequestID(),
		Audit(log),
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsUpgrade(r) {
			upgradeHandler.ServeHTTP(w, r)
			return
		}
		mainHandler.ServeHTTP(w, r)
	})
}

// IsUpgrade reports whether r asks for a protocol upgrade of any kind.
// Every upgrade goes through the session check, not only WebSocket.
func IsUpgrade(r *http.Request) bool {
	return headerContainsToken(r.Header, "Connection", "upgrade") &&
		strings.TrimSpace(r.Header.Get("Upgrade")) != ""
}

func headerContainsToken(h http.Header, name, token string) bool {
	for _, v := range h.Values(name) {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

// NewOpsRouter serves /metrics, /health and /ready for the operations
// listener.
func NewOpsRouter(metrics *metric.Registry, sessions handler.Counter, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())

	health := handler.Health(sessions)
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", health)

	return Chain(mux, Recover(log))
}
