// Package costing maintains per-item cost layers and performs FIFO
// addition and consumption for cost-of-goods-sold computation.
package costing

import "time"

// Layer is a remaining-quantity/unit-cost record from one inventory receipt.
// Layers for a SKU are consumed in (created_at, id) order; the id tie-break
// keeps consumption deterministic when timestamps collide.
type Layer struct {
	ID        int64
	SKU       string
	Qty       float64
	UnitCost  float64
	CreatedAt time.Time
}
