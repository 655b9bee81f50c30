package reports

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the report endpoints under the given router.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/ledger", h.Ledger)
	r.Get("/journal", h.Journal)
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/trial-balance.csv", h.TrialBalanceCSV)
	r.Get("/income-statement", h.IncomeStatement)
	r.Get("/balance-sheet", h.BalanceSheet)
}
