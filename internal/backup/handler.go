package backup

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daftarhq/daftar/internal/platform/httpx"
)

// Handler serves snapshot export, import, and reset.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds the backup handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// MountRoutes attaches the backup endpoints under the given router.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	r.Post("/reset", h.Reset)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Export(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="daftar-backup.json"`)
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var snap Snapshot
	if err := httpx.DecodeJSON(r, &snap); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed snapshot JSON")
		return
	}
	if err := h.svc.Import(r.Context(), snap); err != nil {
		h.logger.ErrorContext(r.Context(), "import failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "reset failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
