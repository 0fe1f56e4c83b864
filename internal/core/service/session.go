// Package service provides domain services for sessgate.
//
// SessionRegistry is the process-wide store of active session tokens.
package service

import (
	"context"
	"log/slog"

	"github.com/yndnr/sessgate/internal/core/domain"
	"github.com/yndnr/sessgate/internal/telemetry/metric"
	"github.com/yndnr/sessgate/pkg/cmap"
	"github.com/yndnr/sessgate/pkg/token"
)

// TokenGenerator produces candidate session tokens.
type TokenGenerator func() (string, error)

// SessionRegistry is an append-only set of session tokens.
//
// Tokens are never removed and never expire; the registry lives as long
// as the process. It grows without bound: one entry per login.
type SessionRegistry struct {
	tokens   *cmap.Set
	generate TokenGenerator
	metrics  *metric.Registry
	logger   *slog.Logger
}

// SessionRegistryOption configures a SessionRegistry.
type SessionRegistryOption func(*SessionRegistry)

// WithTokenGenerator replaces the token source.
func WithTokenGenerator(gen TokenGenerator) SessionRegistryOption {
	return func(r *SessionRegistry) {
		r.generate = gen
	}
}

// WithMetrics attaches a metrics registry.
func WithMetrics(m *metric.Registry) SessionRegistryOption {
	return func(r *SessionRegistry) {
		r.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SessionRegistryOption {
	return func(r *SessionRegistry) {
		r.logger = l
	}
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(opts ...SessionRegistryOption) *SessionRegistry {
	r := &SessionRegistry{
		tokens:   cmap.NewSet(),
		generate: token.Generate,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create issues a new session token.
//
// Candidates that collide with a registered token are discarded and a new
// one is drawn. The membership check and the insert happen under one lock,
// so two concurrent calls can never return the same token.
func (r *SessionRegistry) Create(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate, err := r.generate()
		if err != nil {
			return "", domain.ErrTokenGeneration.WithCause(err)
		}
		if candidate == "" {
			continue
		}

		if r.tokens.Add(candidate) {
			r.metrics.SessionCreated()
			r.logger.Info("new session", "session_id", candidate, "sessions", r.tokens.Len())
			return candidate, nil
		}

		r.logger.Debug("session token collision, resampling")
	}
}

// IsValid reports whether id is a registered token.
// The empty string is never valid.
func (r *SessionRegistry) IsValid(id string) bool {
	if id == "" {
		return false
	}
	return r.tokens.Has(id)
}

// Count returns the number of registered tokens.
func (r *SessionRegistry) Count() int {
	return r.tokens.Len()
}
