package dimensions

import (
	"log/slog"
	"net/http"

	"github.com/daftarhq/daftar/internal/platform/httpx"
)

type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) Branches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.repo.Branches(r.Context())
	if err != nil {
		h.logger.Error("list branches", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, branches)
}

func (h *Handler) CostCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.repo.CostCenters(r.Context())
	if err != nil {
		h.logger.Error("list cost centers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, centers)
}

func (h *Handler) Currencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.repo.Currencies(r.Context())
	if err != nil {
		h.logger.Error("list currencies", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, currencies)
}
