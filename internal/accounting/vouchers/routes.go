package vouchers

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the posting endpoints under the given router.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/sale", h.Sale)
	r.Post("/purchase", h.Purchase)
	r.Post("/receipt", h.Receipt)
	r.Post("/payment", h.Payment)
	r.Post("/journal", h.Journal)
	r.Post("/sales-return", h.SalesReturn)
	r.Post("/purchase-return", h.PurchaseReturn)
}
