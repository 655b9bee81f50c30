package costing

import (
	"context"
	"fmt"

	"github.com/daftarhq/daftar/internal/accounting/shared"
)

// LayerStore abstracts layer persistence for the engine.
type LayerStore interface {
	// LayersFIFO returns the SKU's layers in consumption order, locked
	// against concurrent consumers where the backend supports it.
	LayersFIFO(ctx context.Context, sku string) ([]Layer, error)
	Insert(ctx context.Context, sku string, qty, unitCost float64) error
	SetQty(ctx context.Context, id int64, qty float64) error
	Delete(ctx context.Context, id int64) error
}

// Engine performs FIFO layer addition and consumption over a LayerStore.
type Engine struct {
	store LayerStore
}

// NewEngine builds an Engine.
func NewEngine(store LayerStore) *Engine {
	return &Engine{store: store}
}

// AddLayer appends a new cost layer for the SKU.
func (e *Engine) AddLayer(ctx context.Context, sku string, qty, unitCost float64) error {
	if qty <= 0 || unitCost < 0 {
		return shared.ErrInvalidAmount
	}
	return e.store.Insert(ctx, sku, qty, unitCost)
}

// take pairs a layer with the quantity consumed from it.
type take struct {
	layer Layer
	qty   float64
}

// Consume walks the SKU's layers oldest-first and returns the total cost of
// the consumed quantity. The walk plans the full consumption before mutating
// anything: when stock cannot cover the request, ErrInsufficientStock is
// returned with every layer untouched.
func (e *Engine) Consume(ctx context.Context, sku string, qty float64) (float64, error) {
	if qty <= 0 {
		return 0, shared.ErrInvalidAmount
	}

	layers, err := e.store.LayersFIFO(ctx, sku)
	if err != nil {
		return 0, err
	}

	need := qty
	cost := 0.0
	takes := make([]take, 0, len(layers))
	for _, layer := range layers {
		if need <= 0 {
			break
		}
		taken := min(need, layer.Qty)
		cost += taken * layer.UnitCost
		need -= taken
		takes = append(takes, take{layer: layer, qty: taken})
	}
	if need > 0 {
		return 0, fmt.Errorf("%w: %s", shared.ErrInsufficientStock, sku)
	}

	for _, t := range takes {
		remaining := t.layer.Qty - t.qty
		if remaining <= 0 {
			if err := e.store.Delete(ctx, t.layer.ID); err != nil {
				return 0, err
			}
			continue
		}
		if err := e.store.SetQty(ctx, t.layer.ID, remaining); err != nil {
			return 0, err
		}
	}
	return cost, nil
}
