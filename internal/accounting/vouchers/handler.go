package vouchers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/daftarhq/daftar/internal/accounting/shared"
	"github.com/daftarhq/daftar/internal/platform/httpx"
)

// PostingObserver counts posting outcomes, typically a Prometheus counter.
type PostingObserver interface {
	ObservePosting(kind string, err error)
}

// Handler exposes the posting operations over HTTP.
type Handler struct {
	svc      *Service
	validate *validator.Validate
	logger   *slog.Logger
	observer PostingObserver
}

// NewHandler builds the voucher handler. observer may be nil.
func NewHandler(svc *Service, logger *slog.Logger, observer PostingObserver) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
		observer: observer,
	}
}

func (h *Handler) Sale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.PostSale(r.Context(), req.toInput())
	h.respond(r.Context(), w, "sale", result, err)
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.PostPurchase(r.Context(), req.toInput())
	h.respond(r.Context(), w, "purchase", result, err)
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.PostReceipt(r.Context(), req.toInput())
	h.respond(r.Context(), w, "receipt", result, err)
}

func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.PostPayment(r.Context(), req.toInput())
	h.respond(r.Context(), w, "payment", result, err)
}

func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.PostJournal(r.Context(), req.toInput())
	h.respond(r.Context(), w, "journal", result, err)
}

func (h *Handler) SalesReturn(w http.ResponseWriter, r *http.Request) {
	var req salesReturnRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.PostSalesReturn(r.Context(), req.toInput())
	h.respond(r.Context(), w, "sales_return", result, err)
}

func (h *Handler) PurchaseReturn(w http.ResponseWriter, r *http.Request) {
	var req purchaseReturnRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.PostPurchaseReturn(r.Context(), req.toInput())
	h.respond(r.Context(), w, "purchase_return", result, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := httpx.DecodeJSON(r, req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, kind string, result PostingResult, err error) {
	if h.observer != nil {
		h.observer.ObservePosting(kind, err)
	}
	if err != nil {
		h.respondError(ctx, w, kind, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, kind string, err error) {
	switch {
	case errors.Is(err, shared.ErrUnknownItem):
		httpx.Problem(w, http.StatusNotFound, "Unknown Item", err.Error())
	case errors.Is(err, shared.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, shared.ErrDuplicateDocument):
		httpx.Problem(w, http.StatusConflict, "Duplicate Document", err.Error())
	case errors.Is(err, shared.ErrInvalidAmount), errors.Is(err, shared.ErrAccountRequired):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Voucher", err.Error())
	case errors.Is(err, shared.ErrUnbalanced):
		h.logger.ErrorContext(ctx, "unbalanced posting rejected", "kind", kind)
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unbalanced Posting", err.Error())
	default:
		h.logger.ErrorContext(ctx, "voucher posting failed", "kind", kind, "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
