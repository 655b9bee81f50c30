package reports

import (
	"math"
	"strings"

	"github.com/daftarhq/daftar/internal/accounting/ledger"
)

// balancedTolerance is the largest asset/liability difference still reported
// as balanced. Posting amounts are rounded to the cent, so anything below one
// cent is rounding noise, not a books problem.
const balancedTolerance = 0.01

// BuildLedger annotates account lines, already ordered by date then insertion,
// with a running debit-minus-credit balance.
func BuildLedger(lines []ledger.Line) []LedgerRow {
	rows := make([]LedgerRow, 0, len(lines))
	balance := 0.0
	for _, line := range lines {
		balance += line.Debit - line.Credit
		rows = append(rows, LedgerRow{Line: line, Balance: round2(balance)})
	}
	return rows
}

// BuildTrialBalance lists every chart account with its gross debit and credit
// totals and a balance netted onto the account's normal side. Zero-activity
// accounts keep their row with zero sums.
func BuildTrialBalance(activity []AccountActivity) TrialBalance {
	tb := TrialBalance{Rows: make([]TrialBalanceRow, 0, len(activity))}
	for _, a := range activity {
		row := TrialBalanceRow{
			Account: a.Account,
			Name:    a.Name,
			Debit:   round2(a.Debit),
			Credit:  round2(a.Credit),
			Balance: signedBalance(a),
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = round2(tb.TotalDebit + row.Debit)
		tb.TotalCredit = round2(tb.TotalCredit + row.Credit)
	}
	return tb
}

// signedBalance nets an account's movement onto its normal side: debit minus
// credit for debit-normal accounts, credit minus debit otherwise.
func signedBalance(a AccountActivity) float64 {
	if a.Side == sideCredit {
		return round2(a.Credit - a.Debit)
	}
	return round2(a.Debit - a.Credit)
}

// BuildIncomeStatement classifies period activity by account code prefix.
func BuildIncomeStatement(activity []AccountActivity) IncomeStatement {
	var pl IncomeStatement
	for _, a := range activity {
		switch {
		case strings.HasPrefix(a.Account, prefixSales):
			pl.Sales += a.Credit - a.Debit
		case strings.HasPrefix(a.Account, prefixSalesReturns):
			pl.SalesReturns += a.Debit - a.Credit
		case strings.HasPrefix(a.Account, prefixCOGS):
			pl.COGS += a.Debit - a.Credit
		case strings.HasPrefix(a.Account, prefixExpenses):
			pl.Expenses += a.Debit - a.Credit
		case strings.HasPrefix(a.Account, prefixOtherIncome):
			pl.OtherIncome += a.Credit - a.Debit
		case strings.HasPrefix(a.Account, prefixOtherExpenses):
			pl.OtherExpenses += a.Debit - a.Credit
		}
	}
	pl.Sales = round2(pl.Sales)
	pl.SalesReturns = round2(pl.SalesReturns)
	pl.COGS = round2(pl.COGS)
	pl.Expenses = round2(pl.Expenses)
	pl.OtherIncome = round2(pl.OtherIncome)
	pl.OtherExpenses = round2(pl.OtherExpenses)
	pl.NetSales = round2(pl.Sales - pl.SalesReturns)
	pl.GrossProfit = round2(pl.NetSales - pl.COGS)
	pl.NetProfit = round2(pl.GrossProfit - pl.Expenses + pl.OtherIncome - pl.OtherExpenses)
	return pl
}

// BuildBalanceSheet sums each position account's side-signed balance into its
// section and folds the period's net profit into equity.
func BuildBalanceSheet(activity []AccountActivity) BalanceSheet {
	var bs BalanceSheet
	for _, a := range activity {
		balance := signedBalance(a)
		switch {
		case strings.HasPrefix(a.Account, prefixAssets):
			bs.Assets += balance
		case strings.HasPrefix(a.Account, prefixLiabilities):
			bs.Liabilities += balance
		case strings.HasPrefix(a.Account, prefixEquity):
			bs.Equity += balance
		}
	}
	bs.NetProfit = BuildIncomeStatement(activity).NetProfit
	bs.Assets = round2(bs.Assets)
	bs.Liabilities = round2(bs.Liabilities)
	bs.Equity = round2(bs.Equity + bs.NetProfit)
	bs.Difference = round2(bs.Assets - bs.Liabilities - bs.Equity)
	bs.Balanced = math.Abs(bs.Difference) < balancedTolerance
	return bs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
