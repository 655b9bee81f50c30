// Package reports derives financial statements from the ledger. Reports are
// never stored; they are recomputed from ledger lines on demand, inside a
// read-only snapshot so every row of one report sees the same ledger.
package reports

import (
	"time"

	"github.com/daftarhq/daftar/internal/accounting/ledger"
)

// Account code prefixes that classify ledger activity into statement
// sections. These follow the chart of accounts numbering convention.
const (
	prefixAssets        = "1-"
	prefixLiabilities   = "2-"
	prefixEquity        = "3-"
	prefixSales         = "4-01-"
	prefixSalesReturns  = "4-02-"
	prefixCOGS          = "5-"
	prefixExpenses      = "6-"
	prefixOtherIncome   = "7-01-"
	prefixOtherExpenses = "7-02-"
)

// Period bounds a report. Nil ends are open.
type Period struct {
	From *time.Time
	To   *time.Time
}

// Normal account sides as stored in the chart of accounts.
const (
	sideDebit  = "D"
	sideCredit = "C"
)

// AccountActivity is the summed debit and credit movement of one chart
// account, with the account's normal side.
type AccountActivity struct {
	Account string  `json:"acc"`
	Name    string  `json:"name"`
	Side    string  `json:"side"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
}

// LedgerRow is a ledger line with the running balance after it.
type LedgerRow struct {
	ledger.Line
	Balance float64 `json:"balance"`
}

// TrialBalanceRow carries one chart account's gross debit and credit totals
// and its balance netted onto the account's normal side.
type TrialBalanceRow struct {
	Account string  `json:"acc"`
	Name    string  `json:"name"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
	Balance float64 `json:"balance"`
}

// TrialBalance lists every chart account plus column totals.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  float64           `json:"total_debit"`
	TotalCredit float64           `json:"total_credit"`
}

// IncomeStatement is the classified profit and loss for a period.
type IncomeStatement struct {
	Sales         float64 `json:"sales"`
	SalesReturns  float64 `json:"sales_returns"`
	NetSales      float64 `json:"net_sales"`
	COGS          float64 `json:"cogs"`
	GrossProfit   float64 `json:"gross_profit"`
	Expenses      float64 `json:"expenses"`
	OtherIncome   float64 `json:"other_income"`
	OtherExpenses float64 `json:"other_expenses"`
	NetProfit     float64 `json:"net_profit"`
}

// BalanceSheet is the statement of financial position. Current period net
// profit is folded into equity so a consistent ledger always balances.
type BalanceSheet struct {
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
	Equity      float64 `json:"equity"`
	NetProfit   float64 `json:"net_profit"`
	Difference  float64 `json:"difference"`
	Balanced    bool    `json:"balanced"`
}
