package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/daftarhq/daftar/internal/platform/db"
	"github.com/daftarhq/daftar/internal/shared"
)

// Repository reads item master data and default sale prices.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, sku string) (Item, error)
	PriceMap(ctx context.Context) (map[string]float64, error)
}

type repository struct {
	db db.Querier
}

// NewRepository builds a Repository over a pool or transaction.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

func (r *repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx, `SELECT sku, name, uom, COALESCE(cat4, ''), COALESCE(cat5, '') FROM items ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("items: list: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.SKU, &it.Name, &it.UOM, &it.Cat4, &it.Cat5); err != nil {
			return nil, fmt.Errorf("items: scan: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, sku string) (Item, error) {
	var it Item
	err := r.db.QueryRow(ctx, `SELECT sku, name, uom, COALESCE(cat4, ''), COALESCE(cat5, '') FROM items WHERE sku = $1`, sku).
		Scan(&it.SKU, &it.Name, &it.UOM, &it.Cat4, &it.Cat5)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, fmt.Errorf("items: get %s: %w", sku, err)
	}
	return it, nil
}

func (r *repository) PriceMap(ctx context.Context) (map[string]float64, error) {
	rows, err := r.db.Query(ctx, `SELECT sku, price FROM item_prices`)
	if err != nil {
		return nil, fmt.Errorf("items: prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]float64)
	for rows.Next() {
		var sku string
		var price float64
		if err := rows.Scan(&sku, &price); err != nil {
			return nil, fmt.Errorf("items: scan price: %w", err)
		}
		prices[sku] = price
	}
	return prices, rows.Err()
}
