package reports

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftarhq/daftar/internal/accounting/ledger"
	"github.com/daftarhq/daftar/internal/platform/db"
)

// Reader is the report-facing view of the ledger inside one snapshot.
type Reader interface {
	AccountLines(ctx context.Context, account string, period Period) ([]ledger.Line, error)
	Journal(ctx context.Context, filter ledger.JournalFilter) ([]ledger.Line, error)
	Activity(ctx context.Context, period Period) ([]AccountActivity, error)
}

// Repository opens read-only ledger snapshots for report building.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the Postgres-backed report repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithSnapshot runs fn against a single consistent view of the ledger.
func (r *Repository) WithSnapshot(ctx context.Context, fn func(ctx context.Context, reader Reader) error) error {
	return db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &reader{q: tx, lines: ledger.NewStore(tx)})
	})
}

type reader struct {
	q     db.Querier
	lines *ledger.Store
}

func (r *reader) AccountLines(ctx context.Context, account string, period Period) ([]ledger.Line, error) {
	return r.lines.ForAccount(ctx, account, period.From, period.To)
}

func (r *reader) Journal(ctx context.Context, filter ledger.JournalFilter) ([]ledger.Line, error) {
	return r.lines.Journal(ctx, filter)
}

// Activity sums debit and credit per chart account over the period. Every
// chart account appears, zero-activity ones with zero sums, so statements
// that depend on the account's normal side see the full chart.
func (r *reader) Activity(ctx context.Context, period Period) ([]AccountActivity, error) {
	query := `SELECT c.code, c.name, c.side, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM chart_of_accounts c
LEFT JOIN ledger_lines l ON l.account_code = c.code`
	args := []any{}
	if period.From != nil {
		args = append(args, *period.From)
		query += ` AND l.doc_date >= $` + strconv.Itoa(len(args))
	}
	if period.To != nil {
		args = append(args, *period.To)
		query += ` AND l.doc_date <= $` + strconv.Itoa(len(args))
	}
	query += ` GROUP BY c.code, c.name, c.side ORDER BY c.code`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reports: query activity: %w", err)
	}
	defer rows.Close()

	var activity []AccountActivity
	for rows.Next() {
		var a AccountActivity
		if err := rows.Scan(&a.Account, &a.Name, &a.Side, &a.Debit, &a.Credit); err != nil {
			return nil, fmt.Errorf("reports: scan activity: %w", err)
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}
