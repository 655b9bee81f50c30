// Package dimensions holds the posting dimensions: branches, cost centers,
// and currencies.
package dimensions

import (
	"context"
	"fmt"

	"github.com/daftarhq/daftar/internal/platform/db"
)

// Branch is a posting branch.
type Branch struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CostCenter is a posting cost center.
type CostCenter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Currency is a configured currency; exactly one is functional.
type Currency struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Functional bool   `json:"functional"`
}

// Repository reads posting dimensions.
type Repository interface {
	Branches(ctx context.Context) ([]Branch, error)
	CostCenters(ctx context.Context) ([]CostCenter, error)
	Currencies(ctx context.Context) ([]Currency, error)
}

type repository struct {
	db db.Querier
}

// NewRepository builds a Repository over a pool or transaction.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

func (r *repository) Branches(ctx context.Context) ([]Branch, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM branches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("dimensions: branches: %w", err)
	}
	defer rows.Close()

	var out []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("dimensions: scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) CostCenters(ctx context.Context) ([]CostCenter, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM cost_centers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("dimensions: cost centers: %w", err)
	}
	defer rows.Close()

	var out []CostCenter
	for rows.Next() {
		var c CostCenter
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("dimensions: scan cost center: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Currencies(ctx context.Context) ([]Currency, error) {
	rows, err := r.db.Query(ctx, `SELECT code, name, functional FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("dimensions: currencies: %w", err)
	}
	defer rows.Close()

	var out []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.Code, &c.Name, &c.Functional); err != nil {
			return nil, fmt.Errorf("dimensions: scan currency: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
