package mappings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/daftarhq/daftar/internal/accounting/shared"
	"github.com/daftarhq/daftar/internal/platform/db"
)

// Store looks up category mappings.
type Store interface {
	FindByCategory(ctx context.Context, category string) (AccountSet, error)
}

// PgStore reads the item_gl_mappings table.
type PgStore struct {
	db db.Querier
}

// NewPgStore builds a store over a pool or transaction.
func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

// FindByCategory returns the mapping for an exact category match.
func (s *PgStore) FindByCategory(ctx context.Context, category string) (AccountSet, error) {
	var set AccountSet
	err := s.db.QueryRow(ctx, `
		SELECT inv_account, sales_account, cogs_account
		FROM item_gl_mappings WHERE category = $1
	`, category).Scan(&set.Inventory, &set.Sales, &set.COGS)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountSet{}, shared.ErrMappingNotFound
		}
		return AccountSet{}, fmt.Errorf("mappings: find %s: %w", category, err)
	}
	return set, nil
}

// List returns every mapping, for the auditable mapping endpoint and snapshot
// export.
func (s *PgStore) List(ctx context.Context) ([]Mapping, error) {
	rows, err := s.db.Query(ctx, `SELECT category, inv_account, sales_account, cogs_account FROM item_gl_mappings ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("mappings: list: %w", err)
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.Category, &m.Accounts.Inventory, &m.Accounts.Sales, &m.Accounts.COGS); err != nil {
			return nil, fmt.Errorf("mappings: scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
