package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/sessgate/internal/telemetry/metric"
)

// HeaderSessionID carries the session token on API requests.
const HeaderSessionID = "SESSION-ID"

// handleAPI gates and forwards /api/ requests.
//
// The gate checks only that the header is present. A present header with
// any value, including an empty or unregistered one, is forwarded; the
// backend is expected to apply its own checks. WebSocket upgrades are
// stricter, see handleUpgrade.
func (h *Handler) handleAPI(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if len(r.Header.Values(HeaderSessionID)) == 0 {
		h.logger.Warn("api request without session header rejected",
			"method", r.Method,
			"path", r.URL.Path,
		)
		h.metrics.Request(metric.ClassAPI, metric.OutcomeRejected, time.Since(start))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	h.forwarder.ForwardHTTP(w, r, h.fwdOpts)
	h.metrics.Request(metric.ClassAPI, metric.OutcomeForwarded, time.Since(start))
}
