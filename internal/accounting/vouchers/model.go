// Package vouchers turns business events into balanced ledger postings.
package vouchers

import (
	"math"
	"time"

	"github.com/daftarhq/daftar/internal/accounting/shared"
)

// Settlement selects how a sale or purchase is settled.
type Settlement string

const (
	SettlementCash      Settlement = "CASH"
	SettlementOnAccount Settlement = "ON_ACCOUNT"
)

// Document number prefixes, one per transaction kind.
const (
	PrefixSale           = "AR"
	PrefixPurchase       = "AP"
	PrefixReceipt        = "RC"
	PrefixPayment        = "PY"
	PrefixJournal        = "JV"
	PrefixSalesReturn    = "CRN"
	PrefixPurchaseReturn = "DRN"
)

// Document types stored on the documents header.
const (
	DocTypeSale           = "SALE"
	DocTypePurchase       = "PURCHASE"
	DocTypeReceipt        = "RECEIPT"
	DocTypePayment        = "PAYMENT"
	DocTypeJournal        = "JOURNAL"
	DocTypeSalesReturn    = "SALES_RETURN"
	DocTypePurchaseReturn = "PURCHASE_RETURN"
)

// Fixed account codes used by the posting shapes. Like the report
// classification prefixes, these are a documented convention of the chart of
// accounts, not per-tenant configuration.
const (
	AccountCash           = "1-01-01-001-001"
	AccountBank           = "1-01-02-001-001"
	AccountReceivable     = "1-02-01-000-000"
	AccountDefaultPayable = "2-01-01-000-000"
	AccountVATOutput      = "2-02-01-001-000"
	AccountVATInput       = "2-03-01-001-000"
	AccountSalesReturns   = "4-02-01-000-000"
)

// DefaultCurrency is stamped on documents when the caller does not specify one.
const DefaultCurrency = "SAR"

// Document is the voucher header written alongside the ledger lines.
type Document struct {
	No         string    `json:"no"`
	Type       string    `json:"type"`
	Date       time.Time `json:"date"`
	Branch     string    `json:"branch"`
	CostCenter string    `json:"cc"`
	Currency   string    `json:"currency"`
	Base       float64   `json:"base"`
	VAT        float64   `json:"vat"`
	Total      float64   `json:"total"`
}

// DocumentLine is the item detail row for sale/purchase style vouchers.
type DocumentLine struct {
	DocNo       string  `json:"doc_no"`
	SKU         string  `json:"sku"`
	Description string  `json:"desc"`
	Qty         float64 `json:"qty"`
	Price       float64 `json:"price"`
	Net         float64 `json:"net"`
}

// PostingResult reports the allocated document number and the monetary
// breakdown of a successful posting.
type PostingResult struct {
	DocNo    string  `json:"doc_no"`
	Base     float64 `json:"base"`
	VAT      float64 `json:"vat"`
	Total    float64 `json:"total"`
	COGS     float64 `json:"cogs,omitempty"`
	ItemName string  `json:"item_name,omitempty"`
}

// SaleInput parameterizes a sales invoice.
type SaleInput struct {
	Date       time.Time
	Branch     string
	CostCenter string
	SKU        string
	Qty        float64
	Price      float64
	Settlement Settlement
	Currency   string
}

func (in SaleInput) Validate() error {
	if in.SKU == "" {
		return shared.ErrUnknownItem
	}
	if in.Qty <= 0 || in.Price <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// PurchaseInput parameterizes a purchase invoice. SupplierAccount is only
// consulted for on-account settlement and falls back to the default payable.
type PurchaseInput struct {
	Date            time.Time
	Branch          string
	CostCenter      string
	SKU             string
	Qty             float64
	Price           float64
	Settlement      Settlement
	SupplierAccount string
	Currency        string
}

func (in PurchaseInput) Validate() error {
	if in.SKU == "" {
		return shared.ErrUnknownItem
	}
	if in.Qty <= 0 || in.Price <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// TransferInput parameterizes a receipt or payment voucher: a single
// debit/credit pair between two caller-supplied accounts.
type TransferInput struct {
	Date        time.Time
	FromAccount string
	ToAccount   string
	Amount      float64
	Branch      string
	CostCenter  string
}

func (in TransferInput) Validate() error {
	if in.FromAccount == "" || in.ToAccount == "" {
		return shared.ErrAccountRequired
	}
	if in.Amount <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// JournalInput parameterizes a manual journal entry.
type JournalInput struct {
	Date          time.Time
	DebitAccount  string
	CreditAccount string
	Amount        float64
	Branch        string
	CostCenter    string
}

func (in JournalInput) Validate() error {
	if in.DebitAccount == "" || in.CreditAccount == "" {
		return shared.ErrAccountRequired
	}
	if in.Amount <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// SalesReturnInput parameterizes a credit note.
type SalesReturnInput struct {
	Date       time.Time
	SKU        string
	Qty        float64
	Price      float64
	Refund     Settlement
	Branch     string
	CostCenter string
}

func (in SalesReturnInput) Validate() error {
	if in.SKU == "" {
		return shared.ErrUnknownItem
	}
	if in.Qty <= 0 || in.Price <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// PurchaseReturnInput parameterizes a debit note.
type PurchaseReturnInput struct {
	Date            time.Time
	SKU             string
	Qty             float64
	Price           float64
	SupplierAccount string
	Branch          string
	CostCenter      string
}

func (in PurchaseReturnInput) Validate() error {
	if in.SKU == "" {
		return shared.ErrUnknownItem
	}
	if in.Qty <= 0 || in.Price <= 0 {
		return shared.ErrInvalidAmount
	}
	return nil
}

// round2 rounds a monetary amount to 2 decimal places. Sub-amounts are rounded
// before combining so report reconciliation is deterministic to the cent.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
