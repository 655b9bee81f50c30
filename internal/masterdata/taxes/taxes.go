package taxes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/daftarhq/daftar/internal/platform/db"
	"github.com/daftarhq/daftar/internal/platform/httpx"
)

// TaxCode describes a configured tax and its GL accounts.
type TaxCode struct {
	Code      string  `json:"code"`
	Type      string  `json:"type"`
	Rate      float64 `json:"rate"`
	GL        string  `json:"gl,omitempty"`
	GLOutput  string  `json:"gl_out,omitempty"`
	GLInput   string  `json:"gl_in,omitempty"`
}

// Repository reads tax codes.
type Repository interface {
	List(ctx context.Context) ([]TaxCode, error)
}

type repository struct {
	db db.Querier
}

// NewRepository builds a Repository over a pool or transaction.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

func (r *repository) List(ctx context.Context) ([]TaxCode, error) {
	rows, err := r.db.Query(ctx, `SELECT code, type, rate, COALESCE(gl, ''), COALESCE(gl_out, ''), COALESCE(gl_in, '') FROM tax_codes ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("taxes: list: %w", err)
	}
	defer rows.Close()

	var out []TaxCode
	for rows.Next() {
		var t TaxCode
		if err := rows.Scan(&t.Code, &t.Type, &t.Rate, &t.GL, &t.GLOutput, &t.GLInput); err != nil {
			return nil, fmt.Errorf("taxes: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	codes, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list tax codes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, codes)
}
