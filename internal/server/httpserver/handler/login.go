package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/sessgate/internal/telemetry/metric"
)

// handleLogin handles GET /api/login and GET /login.
//
// Every call issues a fresh token; there is no credential check.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := h.sessions.Create(r.Context())
	if err != nil {
		h.logger.Error("session creation failed", "error", err)
		h.metrics.Request(metric.ClassLogin, metric.OutcomeFailed, time.Since(start))
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, LoginResponse{SessionID: id})
	h.metrics.Request(metric.ClassLogin, metric.OutcomeServed, time.Since(start))
}
