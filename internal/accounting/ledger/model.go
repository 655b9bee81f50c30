// Package ledger is the append-only store of posted ledger lines.
package ledger

import "time"

// Line is a single debit or credit against an account. Lines are written only
// by the voucher posting engine and are immutable afterwards; bulk deletion
// happens only through snapshot import and full reset.
type Line struct {
	ID         int64     `json:"-"`
	DocDate    time.Time `json:"doc_date"`
	DocNo      string    `json:"doc_no"`
	Account    string    `json:"acc"`
	Debit      float64   `json:"debit"`
	Credit     float64   `json:"credit"`
	Branch     string    `json:"branch"`
	CostCenter string    `json:"cc"`
	CreatedAt  time.Time `json:"-"`
}

// JournalFilter narrows the raw journal listing.
type JournalFilter struct {
	From       *time.Time
	To         *time.Time
	Branch     string
	CostCenter string
	Limit      int
}
