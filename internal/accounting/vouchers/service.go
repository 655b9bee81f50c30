package vouchers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/daftarhq/daftar/internal/accounting/ledger"
	"github.com/daftarhq/daftar/internal/accounting/mappings"
	"github.com/daftarhq/daftar/internal/accounting/shared"
	internalShared "github.com/daftarhq/daftar/internal/shared"
)

// RateSource supplies the configured VAT rate.
type RateSource interface {
	VATRate(ctx context.Context) (float64, error)
}

// AuditPort records posting actions.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CacheInvalidator busts derived report caches after a posting commits.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Service orchestrates voucher postings. Every operation runs as one unit of
// work: sequence allocation, masterdata reads, cost-layer mutations, ledger
// lines, and the document header either all commit or all roll back.
type Service struct {
	repo   Repository
	rates  RateSource
	audit  AuditPort
	cache  CacheInvalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service. audit and cache may be nil.
func NewService(repo Repository, rates RateSource, audit AuditPort, cache CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, rates: rates, audit: audit, cache: cache, logger: logger, now: time.Now}
}

// WithNow overrides the clock for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PostSale posts a sales invoice with FIFO COGS.
func (s *Service) PostSale(ctx context.Context, input SaleInput) (PostingResult, error) {
	if err := input.Validate(); err != nil {
		return PostingResult{}, err
	}
	rate, err := s.rates.VATRate(ctx)
	if err != nil {
		return PostingResult{}, err
	}

	var result PostingResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.Item(ctx, input.SKU)
		if err != nil {
			if errors.Is(err, internalShared.ErrNotFound) {
				return fmt.Errorf("%w: %s", shared.ErrUnknownItem, input.SKU)
			}
			return err
		}
		accounts, err := tx.ResolveAccounts(ctx, item.Cat5)
		if err != nil {
			return err
		}
		docNo, err := tx.NextNumber(ctx, PrefixSale)
		if err != nil {
			return err
		}

		base := round2(input.Qty * input.Price)
		vat := round2(base * rate)
		total := base + vat

		debitAccount := AccountReceivable
		if input.Settlement == SettlementCash {
			debitAccount = AccountCash
		}

		cogs, err := tx.ConsumeLayers(ctx, input.SKU, input.Qty)
		if err != nil {
			return err
		}
		cogs = round2(cogs)

		lines := []postingLine{
			{account: debitAccount, debit: total},
			{account: accounts.Sales, credit: base},
			{account: AccountVATOutput, credit: vat},
			{account: accounts.COGS, debit: cogs},
			{account: accounts.Inventory, credit: cogs},
		}
		if err := s.postLines(ctx, tx, input.Date, docNo, input.Branch, input.CostCenter, lines); err != nil {
			return err
		}

		if err := tx.InsertDocument(ctx, Document{
			No: docNo, Type: DocTypeSale, Date: input.Date,
			Branch: input.Branch, CostCenter: input.CostCenter,
			Currency: currencyOrDefault(input.Currency),
			Base:     base, VAT: vat, Total: total,
		}); err != nil {
			return err
		}
		if err := tx.InsertDocumentLine(ctx, DocumentLine{
			DocNo: docNo, SKU: input.SKU, Description: item.Name,
			Qty: input.Qty, Price: input.Price, Net: base,
		}); err != nil {
			return err
		}

		result = PostingResult{DocNo: docNo, Base: base, VAT: vat, Total: total, COGS: cogs, ItemName: item.Name}
		return nil
	})
	if err != nil {
		return PostingResult{}, err
	}
	s.committed(ctx, "voucher.sale", result, map[string]any{"sku": input.SKU, "qty": input.Qty})
	return result, nil
}

// PostPurchase posts a purchase invoice and adds an inventory cost layer.
func (s *Service) PostPurchase(ctx context.Context, input PurchaseInput) (PostingResult, error) {
	if err := input.Validate(); err != nil {
		return PostingResult{}, err
	}
	rate, err := s.rates.VATRate(ctx)
	if err != nil {
		return PostingResult{}, err
	}

	var result PostingResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.Item(ctx, input.SKU)
		if err != nil {
			if errors.Is(err, internalShared.ErrNotFound) {
				return fmt.Errorf("%w: %s", shared.ErrUnknownItem, input.SKU)
			}
			return err
		}
		accounts, err := tx.ResolveAccounts(ctx, item.Cat5)
		if err != nil {
			return err
		}
		docNo, err := tx.NextNumber(ctx, PrefixPurchase)
		if err != nil {
			return err
		}

		base := round2(input.Qty * input.Price)
		vat := round2(base * rate)
		total := base + vat

		creditAccount := input.SupplierAccount
		if input.Settlement == SettlementCash {
			creditAccount = AccountBank
		} else if creditAccount == "" {
			creditAccount = AccountDefaultPayable
		}

		lines := []postingLine{
			{account: accounts.Inventory, debit: base},
			{account: AccountVATInput, debit: vat},
			{account: creditAccount, credit: total},
		}
		if err := s.postLines(ctx, tx, input.Date, docNo, input.Branch, input.CostCenter, lines); err != nil {
			return err
		}
		if err := tx.AddLayer(ctx, input.SKU, input.Qty, input.Price); err != nil {
			return err
		}

		if err := tx.InsertDocument(ctx, Document{
			No: docNo, Type: DocTypePurchase, Date: input.Date,
			Branch: input.Branch, CostCenter: input.CostCenter,
			Currency: currencyOrDefault(input.Currency),
			Base:     base, VAT: vat, Total: total,
		}); err != nil {
			return err
		}
		if err := tx.InsertDocumentLine(ctx, DocumentLine{
			DocNo: docNo, SKU: input.SKU, Description: item.Name,
			Qty: input.Qty, Price: input.Price, Net: base,
		}); err != nil {
			return err
		}

		result = PostingResult{DocNo: docNo, Base: base, VAT: vat, Total: total, ItemName: item.Name}
		return nil
	})
	if err != nil {
		return PostingResult{}, err
	}
	s.committed(ctx, "voucher.purchase", result, map[string]any{"sku": input.SKU, "qty": input.Qty})
	return result, nil
}

// PostReceipt posts a receipt voucher: debit the receiving account, credit the
// source account.
func (s *Service) PostReceipt(ctx context.Context, input TransferInput) (PostingResult, error) {
	return s.postTransfer(ctx, input, PrefixReceipt, DocTypeReceipt, "voucher.receipt")
}

// PostPayment posts a payment voucher. Receipt and payment share the posting
// shape and differ only in prefix and document type.
func (s *Service) PostPayment(ctx context.Context, input TransferInput) (PostingResult, error) {
	return s.postTransfer(ctx, input, PrefixPayment, DocTypePayment, "voucher.payment")
}

// PostJournal posts a manual journal entry between two accounts.
func (s *Service) PostJournal(ctx context.Context, input JournalInput) (PostingResult, error) {
	if err := input.Validate(); err != nil {
		return PostingResult{}, err
	}
	var result PostingResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		docNo, err := tx.NextNumber(ctx, PrefixJournal)
		if err != nil {
			return err
		}
		amount := round2(input.Amount)
		lines := []postingLine{
			{account: input.DebitAccount, debit: amount},
			{account: input.CreditAccount, credit: amount},
		}
		if err := s.postLines(ctx, tx, input.Date, docNo, input.Branch, input.CostCenter, lines); err != nil {
			return err
		}
		if err := tx.InsertDocument(ctx, Document{
			No: docNo, Type: DocTypeJournal, Date: input.Date,
			Branch: input.Branch, CostCenter: input.CostCenter,
			Currency: DefaultCurrency, Total: amount,
		}); err != nil {
			return err
		}
		result = PostingResult{DocNo: docNo, Total: amount}
		return nil
	})
	if err != nil {
		return PostingResult{}, err
	}
	s.committed(ctx, "voucher.journal", result, nil)
	return result, nil
}

// PostSalesReturn posts a credit note: the mirror of a sale. Inventory is
// restored at the return price and the COGS reversal deliberately uses the
// return's base amount rather than a recomputed FIFO cost; the two only agree
// when the price has not moved since the original sale.
func (s *Service) PostSalesReturn(ctx context.Context, input SalesReturnInput) (PostingResult, error) {
	if err := input.Validate(); err != nil {
		return PostingResult{}, err
	}
	rate, err := s.rates.VATRate(ctx)
	if err != nil {
		return PostingResult{}, err
	}

	var result PostingResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		// Unknown SKUs fall back to the default category so a return can
		// always be booked, matching the resolver's availability trade-off.
		category := mappings.DefaultCategory
		itemName := ""
		item, err := tx.Item(ctx, input.SKU)
		if err == nil {
			category = item.Cat5
			itemName = item.Name
		} else if !errors.Is(err, internalShared.ErrNotFound) {
			return err
		}
		accounts, err := tx.ResolveAccounts(ctx, category)
		if err != nil {
			return err
		}
		docNo, err := tx.NextNumber(ctx, PrefixSalesReturn)
		if err != nil {
			return err
		}

		base := round2(input.Qty * input.Price)
		vat := round2(base * rate)
		total := base + vat

		creditAccount := AccountReceivable
		if input.Refund == SettlementCash {
			creditAccount = AccountCash
		}

		lines := []postingLine{
			{account: AccountSalesReturns, debit: base},
			{account: AccountVATOutput, debit: vat},
			{account: creditAccount, credit: total},
			{account: accounts.Inventory, debit: base},
			{account: accounts.COGS, credit: base},
		}
		if err := s.postLines(ctx, tx, input.Date, docNo, input.Branch, input.CostCenter, lines); err != nil {
			return err
		}
		if err := tx.AddLayer(ctx, input.SKU, input.Qty, input.Price); err != nil {
			return err
		}

		if err := tx.InsertDocument(ctx, Document{
			No: docNo, Type: DocTypeSalesReturn, Date: input.Date,
			Branch: input.Branch, CostCenter: input.CostCenter,
			Currency: DefaultCurrency,
			Base:     base, VAT: vat, Total: total,
		}); err != nil {
			return err
		}
		if err := tx.InsertDocumentLine(ctx, DocumentLine{
			DocNo: docNo, SKU: input.SKU, Description: itemName,
			Qty: input.Qty, Price: input.Price, Net: base,
		}); err != nil {
			return err
		}

		result = PostingResult{DocNo: docNo, Base: base, VAT: vat, Total: total, ItemName: itemName}
		return nil
	})
	if err != nil {
		return PostingResult{}, err
	}
	s.committed(ctx, "voucher.sales_return", result, map[string]any{"sku": input.SKU, "qty": input.Qty})
	return result, nil
}

// PostPurchaseReturn posts a debit note: the mirror of a purchase. The FIFO
// consume is best-effort; a purchase return does not require the stock to
// still be physically present, so insufficient stock is swallowed.
func (s *Service) PostPurchaseReturn(ctx context.Context, input PurchaseReturnInput) (PostingResult, error) {
	if err := input.Validate(); err != nil {
		return PostingResult{}, err
	}
	rate, err := s.rates.VATRate(ctx)
	if err != nil {
		return PostingResult{}, err
	}

	var result PostingResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		category := mappings.DefaultCategory
		itemName := ""
		item, err := tx.Item(ctx, input.SKU)
		if err == nil {
			category = item.Cat5
			itemName = item.Name
		} else if !errors.Is(err, internalShared.ErrNotFound) {
			return err
		}
		accounts, err := tx.ResolveAccounts(ctx, category)
		if err != nil {
			return err
		}
		docNo, err := tx.NextNumber(ctx, PrefixPurchaseReturn)
		if err != nil {
			return err
		}

		base := round2(input.Qty * input.Price)
		vat := round2(base * rate)
		total := base + vat

		debitAccount := input.SupplierAccount
		if debitAccount == "" {
			debitAccount = AccountDefaultPayable
		}

		lines := []postingLine{
			{account: accounts.Inventory, credit: base},
			{account: AccountVATInput, credit: vat},
			{account: debitAccount, debit: total},
		}
		if err := s.postLines(ctx, tx, input.Date, docNo, input.Branch, input.CostCenter, lines); err != nil {
			return err
		}
		if _, err := tx.ConsumeLayers(ctx, input.SKU, input.Qty); err != nil && !errors.Is(err, shared.ErrInsufficientStock) {
			return err
		}

		if err := tx.InsertDocument(ctx, Document{
			No: docNo, Type: DocTypePurchaseReturn, Date: input.Date,
			Branch: input.Branch, CostCenter: input.CostCenter,
			Currency: DefaultCurrency,
			Base:     base, VAT: vat, Total: total,
		}); err != nil {
			return err
		}
		if err := tx.InsertDocumentLine(ctx, DocumentLine{
			DocNo: docNo, SKU: input.SKU, Description: itemName,
			Qty: input.Qty, Price: input.Price, Net: base,
		}); err != nil {
			return err
		}

		result = PostingResult{DocNo: docNo, Base: base, VAT: vat, Total: total, ItemName: itemName}
		return nil
	})
	if err != nil {
		return PostingResult{}, err
	}
	s.committed(ctx, "voucher.purchase_return", result, map[string]any{"sku": input.SKU, "qty": input.Qty})
	return result, nil
}

func (s *Service) postTransfer(ctx context.Context, input TransferInput, prefix, docType, action string) (PostingResult, error) {
	if err := input.Validate(); err != nil {
		return PostingResult{}, err
	}
	var result PostingResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		docNo, err := tx.NextNumber(ctx, prefix)
		if err != nil {
			return err
		}
		amount := round2(input.Amount)
		lines := []postingLine{
			{account: input.ToAccount, debit: amount},
			{account: input.FromAccount, credit: amount},
		}
		if err := s.postLines(ctx, tx, input.Date, docNo, input.Branch, input.CostCenter, lines); err != nil {
			return err
		}
		if err := tx.InsertDocument(ctx, Document{
			No: docNo, Type: docType, Date: input.Date,
			Branch: input.Branch, CostCenter: input.CostCenter,
			Currency: DefaultCurrency, Total: amount,
		}); err != nil {
			return err
		}
		result = PostingResult{DocNo: docNo, Total: amount}
		return nil
	})
	if err != nil {
		return PostingResult{}, err
	}
	s.committed(ctx, action, result, nil)
	return result, nil
}

// postingLine is an account/amount pair before it becomes a ledger line.
type postingLine struct {
	account string
	debit   float64
	credit  float64
}

// postLines verifies the double-entry invariant and appends the lines. The
// construction of every voucher guarantees balance; the check is a guard
// against future posting shapes drifting.
func (s *Service) postLines(ctx context.Context, tx TxRepository, date time.Time, docNo, branch, costCenter string, lines []postingLine) error {
	var debit, credit float64
	for _, l := range lines {
		debit += l.debit
		credit += l.credit
	}
	if fmt.Sprintf("%.2f", debit) != fmt.Sprintf("%.2f", credit) {
		return shared.ErrUnbalanced
	}
	for _, l := range lines {
		if err := tx.PostLine(ctx, ledgerLine(date, docNo, l, branch, costCenter)); err != nil {
			return err
		}
	}
	return nil
}

func ledgerLine(date time.Time, docNo string, l postingLine, branch, costCenter string) ledger.Line {
	return ledger.Line{
		DocDate:    date,
		DocNo:      docNo,
		Account:    l.account,
		Debit:      l.debit,
		Credit:     l.credit,
		Branch:     branch,
		CostCenter: costCenter,
	}
}

// committed runs the best-effort side effects of a successful posting. Cache
// and audit failures never undo the posted document, but they are logged so a
// dead Redis or audit table is visible.
func (s *Service) committed(ctx context.Context, action string, result PostingResult, meta map[string]any) {
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.WarnContext(ctx, "report cache bump failed", "action", action, "doc_no", result.DocNo, "error", err)
		}
	}
	if s.audit == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["total"] = result.Total
	err := s.audit.Record(ctx, internalShared.AuditLog{
		Action:   action,
		Entity:   "document",
		EntityID: result.DocNo,
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit record failed", "action", action, "doc_no", result.DocNo, "error", err)
	}
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}
