package costing

import (
	"context"
	"fmt"

	"github.com/daftarhq/daftar/internal/platform/db"
)

// PgStore persists cost layers in the cost_layers table.
type PgStore struct {
	db db.Querier
}

// NewPgStore builds a store over a pool or transaction.
func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

// LayersFIFO selects layers in (created_at, id) order. FOR UPDATE serializes
// concurrent consumers of the same SKU within their transactions.
func (s *PgStore) LayersFIFO(ctx context.Context, sku string) ([]Layer, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, sku, qty, unit_cost, created_at
		FROM cost_layers
		WHERE sku = $1
		ORDER BY created_at, id
		FOR UPDATE
	`, sku)
	if err != nil {
		return nil, fmt.Errorf("costing: select layers: %w", err)
	}
	defer rows.Close()

	var layers []Layer
	for rows.Next() {
		var l Layer
		if err := rows.Scan(&l.ID, &l.SKU, &l.Qty, &l.UnitCost, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("costing: scan layer: %w", err)
		}
		layers = append(layers, l)
	}
	return layers, rows.Err()
}

func (s *PgStore) Insert(ctx context.Context, sku string, qty, unitCost float64) error {
	if _, err := s.db.Exec(ctx, `INSERT INTO cost_layers (sku, qty, unit_cost) VALUES ($1, $2, $3)`, sku, qty, unitCost); err != nil {
		return fmt.Errorf("costing: insert layer: %w", err)
	}
	return nil
}

func (s *PgStore) SetQty(ctx context.Context, id int64, qty float64) error {
	if _, err := s.db.Exec(ctx, `UPDATE cost_layers SET qty = $2 WHERE id = $1`, id, qty); err != nil {
		return fmt.Errorf("costing: update layer: %w", err)
	}
	return nil
}

func (s *PgStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cost_layers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("costing: delete layer: %w", err)
	}
	return nil
}

// AllLayers returns every layer grouped in insertion order, for snapshot export.
func (s *PgStore) AllLayers(ctx context.Context) ([]Layer, error) {
	rows, err := s.db.Query(ctx, `SELECT id, sku, qty, unit_cost, created_at FROM cost_layers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("costing: select all layers: %w", err)
	}
	defer rows.Close()

	var layers []Layer
	for rows.Next() {
		var l Layer
		if err := rows.Scan(&l.ID, &l.SKU, &l.Qty, &l.UnitCost, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("costing: scan layer: %w", err)
		}
		layers = append(layers, l)
	}
	return layers, rows.Err()
}

// DeleteAll removes every layer. Only snapshot import and full reset call this.
func (s *PgStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cost_layers`); err != nil {
		return fmt.Errorf("costing: delete all layers: %w", err)
	}
	return nil
}
