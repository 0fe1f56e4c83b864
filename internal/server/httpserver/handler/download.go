package handler

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yndnr/sessgate/internal/core/domain"
	"github.com/yndnr/sessgate/internal/telemetry/metric"
)

// handleDownload handles GET /api/download/*?path=<file>.
//
// The file must resolve, after following symlinks, to a location inside
// the resolved data root.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requested := r.URL.Query().Get("path")
	h.logger.Debug("archive requested", "path", requested)

	f, err := h.openArchive(requested)
	if err != nil {
		h.metrics.Request(metric.ClassDownload, metric.OutcomeFailed, time.Since(start))

		var de *domain.DomainError
		if !errors.As(err, &de) {
			de = domain.ErrArchiveCorrupted
		}
		if de.Is(domain.ErrArchiveCorrupted) {
			h.logger.Error("archive unreadable", "path", requested, "error", err)
		} else {
			h.logger.Info("archive download refused", "path", requested, "code", de.Code)
		}
		writeText(w, errorCodeToHTTPStatus(de.Code), de.Message)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(f.Name())+`"`)
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Debug("archive write interrupted", "error", err)
	}
	h.metrics.Request(metric.ClassDownload, metric.OutcomeServed, time.Since(start))
}

func (h *Handler) openArchive(requested string) (*os.File, error) {
	if requested == "" {
		return nil, domain.ErrArchiveNotFound
	}

	resolved, err := filepath.EvalSymlinks(requested)
	if err != nil {
		return nil, archiveError(err)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return nil, domain.ErrArchiveCorrupted.WithCause(err)
	}

	if !h.insideDataRoot(resolved) {
		return nil, domain.ErrArchiveOutsideRoot.WithDetails(resolved)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, archiveError(err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, domain.ErrArchiveCorrupted.WithCause(err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, domain.ErrArchiveNotFound.WithDetails(resolved + " is not a regular file")
	}

	return f, nil
}

func (h *Handler) insideDataRoot(p string) bool {
	if h.data == "" {
		return false
	}
	root, err := filepath.EvalSymlinks(h.data)
	if err != nil {
		return false
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return false
	}
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}

func archiveError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ErrArchiveNotFound.WithCause(err)
	}
	return domain.ErrArchiveCorrupted.WithCause(err)
}
