package vouchers

import "time"

const dateLayout = "2006-01-02"

type saleRequest struct {
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Branch     string  `json:"branch"`
	CostCenter string  `json:"cc"`
	SKU        string  `json:"sku" validate:"required"`
	Qty        float64 `json:"qty" validate:"required,gt=0"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	Settlement string  `json:"settlement" validate:"omitempty,oneof=CASH ON_ACCOUNT"`
	Currency   string  `json:"currency" validate:"omitempty,len=3"`
}

func (r saleRequest) toInput() SaleInput {
	date, _ := time.Parse(dateLayout, r.Date)
	return SaleInput{
		Date:       date,
		Branch:     r.Branch,
		CostCenter: r.CostCenter,
		SKU:        r.SKU,
		Qty:        r.Qty,
		Price:      r.Price,
		Settlement: settlementOrDefault(r.Settlement),
		Currency:   r.Currency,
	}
}

type purchaseRequest struct {
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	Branch          string  `json:"branch"`
	CostCenter      string  `json:"cc"`
	SKU             string  `json:"sku" validate:"required"`
	Qty             float64 `json:"qty" validate:"required,gt=0"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	Settlement      string  `json:"settlement" validate:"omitempty,oneof=CASH ON_ACCOUNT"`
	SupplierAccount string  `json:"supplier_account"`
	Currency        string  `json:"currency" validate:"omitempty,len=3"`
}

func (r purchaseRequest) toInput() PurchaseInput {
	date, _ := time.Parse(dateLayout, r.Date)
	return PurchaseInput{
		Date:            date,
		Branch:          r.Branch,
		CostCenter:      r.CostCenter,
		SKU:             r.SKU,
		Qty:             r.Qty,
		Price:           r.Price,
		Settlement:      settlementOrDefault(r.Settlement),
		SupplierAccount: r.SupplierAccount,
		Currency:        r.Currency,
	}
}

type transferRequest struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	FromAccount string  `json:"from_account" validate:"required"`
	ToAccount   string  `json:"to_account" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Branch      string  `json:"branch"`
	CostCenter  string  `json:"cc"`
}

func (r transferRequest) toInput() TransferInput {
	date, _ := time.Parse(dateLayout, r.Date)
	return TransferInput{
		Date:        date,
		FromAccount: r.FromAccount,
		ToAccount:   r.ToAccount,
		Amount:      r.Amount,
		Branch:      r.Branch,
		CostCenter:  r.CostCenter,
	}
}

type journalRequest struct {
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	DebitAccount  string  `json:"debit_account" validate:"required"`
	CreditAccount string  `json:"credit_account" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Branch        string  `json:"branch"`
	CostCenter    string  `json:"cc"`
}

func (r journalRequest) toInput() JournalInput {
	date, _ := time.Parse(dateLayout, r.Date)
	return JournalInput{
		Date:          date,
		DebitAccount:  r.DebitAccount,
		CreditAccount: r.CreditAccount,
		Amount:        r.Amount,
		Branch:        r.Branch,
		CostCenter:    r.CostCenter,
	}
}

type salesReturnRequest struct {
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	SKU        string  `json:"sku" validate:"required"`
	Qty        float64 `json:"qty" validate:"required,gt=0"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	Refund     string  `json:"refund" validate:"omitempty,oneof=CASH ON_ACCOUNT"`
	Branch     string  `json:"branch"`
	CostCenter string  `json:"cc"`
}

func (r salesReturnRequest) toInput() SalesReturnInput {
	date, _ := time.Parse(dateLayout, r.Date)
	return SalesReturnInput{
		Date:       date,
		SKU:        r.SKU,
		Qty:        r.Qty,
		Price:      r.Price,
		Refund:     settlementOrDefault(r.Refund),
		Branch:     r.Branch,
		CostCenter: r.CostCenter,
	}
}

type purchaseReturnRequest struct {
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	SKU             string  `json:"sku" validate:"required"`
	Qty             float64 `json:"qty" validate:"required,gt=0"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	SupplierAccount string  `json:"supplier_account"`
	Branch          string  `json:"branch"`
	CostCenter      string  `json:"cc"`
}

func (r purchaseReturnRequest) toInput() PurchaseReturnInput {
	date, _ := time.Parse(dateLayout, r.Date)
	return PurchaseReturnInput{
		Date:            date,
		SKU:             r.SKU,
		Qty:             r.Qty,
		Price:           r.Price,
		SupplierAccount: r.SupplierAccount,
		Branch:          r.Branch,
		CostCenter:      r.CostCenter,
	}
}

func settlementOrDefault(s string) Settlement {
	if s == "" {
		return SettlementCash
	}
	return Settlement(s)
}
