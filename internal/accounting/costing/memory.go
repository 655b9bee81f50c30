package costing

import (
	"context"
	"sort"
	"time"
)

// MemoryStore is an in-process LayerStore for tests. Layers carry a strictly
// increasing id so FIFO order stays deterministic even when the clock does not
// advance between inserts.
type MemoryStore struct {
	layers []Layer
	nextID int64
	now    func() time.Time
}

// NewMemoryStore builds an empty in-memory layer store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// WithNow overrides the clock, for tests that need colliding timestamps.
func (s *MemoryStore) WithNow(now func() time.Time) *MemoryStore {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *MemoryStore) LayersFIFO(_ context.Context, sku string) ([]Layer, error) {
	var out []Layer
	for _, l := range s.layers {
		if l.SKU == sku {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, sku string, qty, unitCost float64) error {
	s.nextID++
	s.layers = append(s.layers, Layer{ID: s.nextID, SKU: sku, Qty: qty, UnitCost: unitCost, CreatedAt: s.now()})
	return nil
}

func (s *MemoryStore) SetQty(_ context.Context, id int64, qty float64) error {
	for i := range s.layers {
		if s.layers[i].ID == id {
			s.layers[i].Qty = qty
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	for i := range s.layers {
		if s.layers[i].ID == id {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return nil
		}
	}
	return nil
}

// Snapshot returns a copy of the current layers in FIFO order across all SKUs.
func (s *MemoryStore) Snapshot() []Layer {
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}
