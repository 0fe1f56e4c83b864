// Package handler provides HTTP request handlers for sessgate.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/sessgate/internal/core/domain"
	"github.com/yndnr/sessgate/internal/server/forwarder"
	"github.com/yndnr/sessgate/internal/telemetry/logger"
	"github.com/yndnr/sessgate/internal/telemetry/metric"
)

// Sessions issues and checks session tokens.
type Sessions interface {
	Create(ctx context.Context) (string, error)
	IsValid(token string) bool
}

// Forwarder relays traffic to the backend.
type Forwarder interface {
	ForwardHTTP(w http.ResponseWriter, r *http.Request, opts forwarder.Options)
	ForwardUpgrade(w http.ResponseWriter, r *http.Request, opts forwarder.Options)
}

// Config holds the dependencies of a Handler.
type Config struct {
	Sessions  Sessions
	Forwarder Forwarder

	// VerifyBackendTLS is passed to every forwarding call.
	VerifyBackendTLS bool

	// StaticPath holds index.html and the SPA assets.
	StaticPath string

	// DataPath is the root archives may be downloaded from.
	DataPath string

	Metrics *metric.Registry
	Logger  *slog.Logger
}

// Handler is the request dispatcher.
type Handler struct {
	sessions  Sessions
	forwarder Forwarder
	fwdOpts   forwarder.Options
	static    string
	data      string
	metrics   *metric.Registry
	logger    *slog.Logger
	mux       *http.ServeMux
}

// New creates a Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		sessions:  cfg.Sessions,
		forwarder: cfg.Forwarder,
		fwdOpts:   forwarder.Options{VerifyTLS: cfg.VerifyBackendTLS},
		static:    cfg.StaticPath,
		data:      cfg.DataPath,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		mux:       http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Session login, reachable both under the API prefix and at the root.
	h.mux.HandleFunc("GET /api/login", h.handleLogin)
	h.mux.HandleFunc("GET /login", h.handleLogin)

	// Archive download is answered locally and is not gated.
	h.mux.HandleFunc("GET /api/download/", h.handleDownload)

	// Everything else under /api/ is forwarded when the gate allows it.
	// The bare prefix is not an API path and gets the shell.
	h.mux.HandleFunc("/api/", h.handleAPI)
	h.mux.HandleFunc("/api", h.handleShell)

	// SPA shell for every other path.
	h.mux.HandleFunc("/", h.handleShell)
}

// writeJSON writes v as a JSON body.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.GetErrorCode(err)
	if code == "" {
		code = "SG-SYS-5000"
	}
	status := errorCodeToHTTPStatus(code)

	w.Header().Set("X-Error-Code", code)
	h.writeJSON(w, status, NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, errorMessage(err)))
}

// writeText writes a plain text body, used for the download errors whose
// wording clients match on.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func errorMessage(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
// The last four digits of a code carry the status.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4001"), strings.HasSuffix(code, "-4002"), strings.HasSuffix(code, "-4003"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
