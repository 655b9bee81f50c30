package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/daftarhq/daftar/internal/accounting/ledger"
	"github.com/daftarhq/daftar/internal/accounting/shared"
	"github.com/daftarhq/daftar/internal/platform/httpx"
)

// Handler serves the report endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds the report handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Ledger(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.Ledger(r.Context(), r.URL.Query().Get("acc"), period)
	if err != nil {
		if errors.Is(err, shared.ErrAccountRequired) {
			httpx.Problem(w, http.StatusBadRequest, "Account Required", "query parameter acc is required")
			return
		}
		h.fail(w, r, "ledger", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	lines, err := h.svc.Journal(r.Context(), ledger.JournalFilter{
		From:       period.From,
		To:         period.To,
		Branch:     q.Get("branch"),
		CostCenter: q.Get("cc"),
		Limit:      limit,
	})
	if err != nil {
		h.fail(w, r, "journal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lines)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	tb, err := h.svc.TrialBalance(r.Context(), period)
	if err != nil {
		h.fail(w, r, "trial balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) TrialBalanceCSV(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	payload, err := h.svc.TrialBalanceCSV(r.Context(), period)
	if err != nil {
		h.fail(w, r, "trial balance csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trial-balance.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	pl, err := h.svc.IncomeStatement(r.Context(), period)
	if err != nil {
		h.fail(w, r, "income statement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	bs, err := h.svc.BalanceSheet(r.Context(), period)
	if err != nil {
		h.fail(w, r, "balance sheet", err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, report string, err error) {
	h.logger.ErrorContext(r.Context(), "report build failed", "report", report, "error", err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (Period, bool) {
	var period Period
	q := r.URL.Query()
	for name, dest := range map[string]**time.Time{"from": &period.From, "to": &period.To} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "query parameter "+name+" must be YYYY-MM-DD")
			return Period{}, false
		}
		*dest = &t
	}
	return period, true
}
