package costing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daftarhq/daftar/internal/accounting/shared"
)

func TestConsumeFIFO(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	engine := NewEngine(store)

	require.NoError(t, engine.AddLayer(ctx, "SKU-1", 10, 5))
	require.NoError(t, engine.AddLayer(ctx, "SKU-1", 5, 8))

	cost, err := engine.Consume(ctx, "SKU-1", 12)
	require.NoError(t, err)
	require.InDelta(t, 66.0, cost, 1e-9) // 10*5 + 2*8

	layers := store.Snapshot()
	require.Len(t, layers, 1)
	require.InDelta(t, 3.0, layers[0].Qty, 1e-9)
	require.InDelta(t, 8.0, layers[0].UnitCost, 1e-9)
}

func TestConsumeExactlyExhaustsLayer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	engine := NewEngine(store)

	require.NoError(t, engine.AddLayer(ctx, "SKU-1", 4, 10))
	require.NoError(t, engine.AddLayer(ctx, "SKU-1", 6, 12))

	cost, err := engine.Consume(ctx, "SKU-1", 4)
	require.NoError(t, err)
	require.InDelta(t, 40.0, cost, 1e-9)

	layers := store.Snapshot()
	require.Len(t, layers, 1)
	require.InDelta(t, 6.0, layers[0].Qty, 1e-9)
}

func TestConsumeInsufficientStockLeavesLayersUntouched(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	engine := NewEngine(store)

	require.NoError(t, engine.AddLayer(ctx, "SKU-1", 3, 7))
	require.NoError(t, engine.AddLayer(ctx, "SKU-1", 2, 9))
	before := store.Snapshot()

	_, err := engine.Consume(ctx, "SKU-1", 6)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.Equal(t, before, store.Snapshot())
}

func TestConsumeUnknownSKU(t *testing.T) {
	engine := NewEngine(NewMemoryStore())
	_, err := engine.Consume(context.Background(), "NOPE", 1)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestConsumeTieBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithNow(func() time.Time { return frozen })
	engine := NewEngine(store)

	// Identical timestamps: the first inserted layer must be consumed first.
	require.NoError(t, engine.AddLayer(ctx, "SKU-1", 1, 100))
	require.NoError(t, engine.AddLayer(ctx, "SKU-1", 1, 200))

	cost, err := engine.Consume(ctx, "SKU-1", 1)
	require.NoError(t, err)
	require.InDelta(t, 100.0, cost, 1e-9)

	layers := store.Snapshot()
	require.Len(t, layers, 1)
	require.InDelta(t, 200.0, layers[0].UnitCost, 1e-9)
}

func TestEngineRejectsNonPositiveInputs(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(NewMemoryStore())

	require.True(t, errors.Is(engine.AddLayer(ctx, "SKU-1", 0, 5), shared.ErrInvalidAmount))
	require.True(t, errors.Is(engine.AddLayer(ctx, "SKU-1", 1, -1), shared.ErrInvalidAmount))
	_, err := engine.Consume(ctx, "SKU-1", 0)
	require.ErrorIs(t, err, shared.ErrInvalidAmount)
}
