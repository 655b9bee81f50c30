package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/daftarhq/daftar/internal/platform/db"
)

const defaultJournalLimit = 100

// Store reads and appends ledger lines. It works over a pool for report and
// backup reads and over a transaction handle inside voucher postings.
type Store struct {
	db db.Querier
}

// NewStore builds a Store over a pool or transaction.
func NewStore(q db.Querier) *Store {
	return &Store{db: q}
}

// Insert appends one ledger line.
func (s *Store) Insert(ctx context.Context, line Line) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ledger_lines (doc_date, doc_no, account_code, debit, credit, branch, cost_center)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, line.DocDate, line.DocNo, line.Account, line.Debit, line.Credit, line.Branch, line.CostCenter)
	if err != nil {
		return fmt.Errorf("ledger: insert line: %w", err)
	}
	return nil
}

// ForAccount returns the account's lines in posting order (doc_date, then
// insertion order), optionally bounded by an inclusive date range.
func (s *Store) ForAccount(ctx context.Context, account string, from, to *time.Time) ([]Line, error) {
	query := `SELECT id, doc_date, doc_no, account_code, debit, credit, branch, cost_center, created_at
FROM ledger_lines WHERE account_code = $1`
	args := []any{account}
	if from != nil {
		args = append(args, *from)
		query += ` AND doc_date >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND doc_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY doc_date, id`
	return s.queryLines(ctx, query, args)
}

// Journal returns recent lines matching the filter, newest first.
func (s *Store) Journal(ctx context.Context, filter JournalFilter) ([]Line, error) {
	query := `SELECT id, doc_date, doc_no, account_code, debit, credit, branch, cost_center, created_at
FROM ledger_lines WHERE 1=1`
	args := []any{}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND doc_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND doc_date <= $` + strconv.Itoa(len(args))
	}
	if filter.Branch != "" {
		args = append(args, filter.Branch)
		query += ` AND branch = $` + strconv.Itoa(len(args))
	}
	if filter.CostCenter != "" {
		args = append(args, filter.CostCenter)
		query += ` AND cost_center = $` + strconv.Itoa(len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	args = append(args, limit)
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args))
	return s.queryLines(ctx, query, args)
}

// All returns every ledger line in insertion order. Used by snapshot export
// and the prefix-classified reports.
func (s *Store) All(ctx context.Context) ([]Line, error) {
	return s.queryLines(ctx, `SELECT id, doc_date, doc_no, account_code, debit, credit, branch, cost_center, created_at
FROM ledger_lines ORDER BY id`, nil)
}

// DeleteAll removes every ledger line. Only snapshot import and full reset
// call this, inside their own transactions.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM ledger_lines`); err != nil {
		return fmt.Errorf("ledger: delete all: %w", err)
	}
	return nil
}

func (s *Store) queryLines(ctx context.Context, query string, args []any) ([]Line, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: query lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.DocDate, &l.DocNo, &l.Account, &l.Debit, &l.Credit, &l.Branch, &l.CostCenter, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
