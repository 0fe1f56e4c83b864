package handler

import (
	"net/http"
	"strings"

	"github.com/yndnr/sessgate/internal/telemetry/metric"
)

const sessionIDParam = "sessionID="

// SessionIDFromURI extracts the session token from a raw request URI by
// plain text search rather than query parsing.
//
// The token runs from just after the first "sessionID=" up to the first
// "&" anywhere in the URI. A URI without "&" loses its final character,
// so a token passed as the last parameter never validates.
func SessionIDFromURI(uri string) string {
	start := strings.Index(uri, sessionIDParam) + len(sessionIDParam)
	end := strings.Index(uri, "&")
	return sliceIndex(uri, start, end)
}

// sliceIndex returns s[start:end] where negative indexes count back from
// the end of s, out of range indexes are clamped and an empty or inverted
// range gives "".
func sliceIndex(s string, start, end int) string {
	n := len(s)
	clamp := func(i int) int {
		if i < 0 {
			i += n
			if i < 0 {
				i = 0
			}
		}
		if i > n {
			i = n
		}
		return i
	}

	start, end = clamp(start), clamp(end)
	if start >= end {
		return ""
	}
	return s[start:end]
}

// Upgrade returns the handler for WebSocket upgrade requests on any path.
func (h *Handler) Upgrade() http.Handler {
	return http.HandlerFunc(h.handleUpgrade)
}

// handleUpgrade forwards an upgrade when the URI carries a registered
// token. Otherwise nothing is written: the connection is taken over and
// closed, so the client sees the handshake fail without a status line.
func (h *Handler) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}

	if !h.sessions.IsValid(SessionIDFromURI(uri)) {
		h.logger.Debug("socket upgrade refused", "path", r.URL.Path)
		h.metrics.Upgrade(metric.OutcomeRefused)
		closeSilently(w)
		return
	}

	h.logger.Info("socket connection upgrading", "path", r.URL.Path)
	h.metrics.Upgrade(metric.OutcomeAccepted)
	h.forwarder.ForwardUpgrade(w, r, h.fwdOpts)
}

func closeSilently(w http.ResponseWriter) {
	conn, _, err := http.NewResponseController(w).Hijack()
	if err != nil {
		// Not hijackable (HTTP/2): abort so no response is sent.
		panic(http.ErrAbortHandler)
	}
	conn.Close()
}
