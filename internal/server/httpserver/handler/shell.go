package handler

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/yndnr/sessgate/internal/telemetry/metric"
)

// ShellFile is the SPA entry document under the static root.
const ShellFile = "index.html"

// handleShell serves the SPA shell for any non-API GET or HEAD, whatever
// the path. The file is read per request so a redeployed bundle is picked
// up without a restart.
func (h *Handler) handleShell(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	start := time.Now()

	f, err := os.Open(filepath.Join(h.static, ShellFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("spa shell missing", "static_path", h.static)
			h.metrics.Request(metric.ClassShell, metric.OutcomeFailed, time.Since(start))
			http.NotFound(w, r)
			return
		}
		h.logger.Error("spa shell unreadable", "error", err)
		h.metrics.Request(metric.ClassShell, metric.OutcomeFailed, time.Since(start))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, f); err != nil {
			h.logger.Debug("spa shell write interrupted", "error", err)
		}
	}
	h.metrics.Request(metric.ClassShell, metric.OutcomeServed, time.Since(start))
}

// Static serves existing regular files under root for GET and HEAD and
// passes every other request to next. Directories are never listed.
func Static(root string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if root == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
				next.ServeHTTP(w, r)
				return
			}

			name := path.Clean("/" + r.URL.Path)
			f, err := os.Open(filepath.Join(root, filepath.FromSlash(name)))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil || !info.Mode().IsRegular() {
				next.ServeHTTP(w, r)
				return
			}

			http.ServeContent(w, r, info.Name(), info.ModTime(), f)
		})
	}
}
