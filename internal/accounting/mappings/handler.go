package mappings

import (
	"log/slog"
	"net/http"

	"github.com/daftarhq/daftar/internal/platform/httpx"
)

// Handler exposes the mapping table read-only, keeping the fallback
// substitution auditable.
type Handler struct {
	logger *slog.Logger
	store  *PgStore
}

func NewHandler(logger *slog.Logger, store *PgStore) *Handler {
	return &Handler{logger: logger, store: store}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list mappings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make(map[string]AccountSet, len(all))
	for _, m := range all {
		out[m.Category] = m.Accounts
	}
	httpx.JSON(w, http.StatusOK, out)
}
