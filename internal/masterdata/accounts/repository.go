package accounts

import (
	"context"
	"fmt"

	"github.com/daftarhq/daftar/internal/platform/db"
)

// Repository reads the chart of accounts.
type Repository interface {
	List(ctx context.Context) ([]Account, error)
}

type repository struct {
	db db.Querier
}

// NewRepository builds a Repository over a pool or transaction.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

func (r *repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT code, name, side FROM chart_of_accounts ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("accounts: list: %w", err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.Code, &a.Name, &a.Side); err != nil {
			return nil, fmt.Errorf("accounts: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
