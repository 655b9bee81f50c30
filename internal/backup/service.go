package backup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/daftarhq/daftar/internal/accounting/costing"
	"github.com/daftarhq/daftar/internal/accounting/ledger"
	"github.com/daftarhq/daftar/internal/accounting/mappings"
	"github.com/daftarhq/daftar/internal/masterdata/accounts"
	"github.com/daftarhq/daftar/internal/masterdata/dimensions"
	"github.com/daftarhq/daftar/internal/masterdata/items"
	"github.com/daftarhq/daftar/internal/masterdata/settings"
	"github.com/daftarhq/daftar/internal/masterdata/taxes"
	"github.com/daftarhq/daftar/internal/platform/db"
)

// Invalidator busts derived caches after import or reset.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service exports, imports, and resets the bookkeeping state.
type Service struct {
	pool   *pgxpool.Pool
	cache  Invalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds the backup service. cache may be nil.
func NewService(pool *pgxpool.Pool, cache Invalidator, logger *slog.Logger) *Service {
	return &Service{pool: pool, cache: cache, logger: logger, now: time.Now}
}

// Export collects the full state. Sections load concurrently; each read is
// independent and masterdata churn is low enough that section-level
// consistency suffices for a backup file.
func (s *Service) Export(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{ExportedAt: s.now()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Config, err = settings.NewService(settings.NewRepository(s.pool)).Get(ctx)
		return err
	})
	g.Go(func() error {
		dims := dimensions.NewRepository(s.pool)
		var err error
		if snap.Branches, err = dims.Branches(ctx); err != nil {
			return err
		}
		if snap.CostCenters, err = dims.CostCenters(ctx); err != nil {
			return err
		}
		snap.Currencies, err = dims.Currencies(ctx)
		return err
	})
	g.Go(func() error {
		repo := items.NewRepository(s.pool)
		var err error
		if snap.Items, err = repo.List(ctx); err != nil {
			return err
		}
		snap.Prices, err = repo.PriceMap(ctx)
		return err
	})
	g.Go(func() error {
		list, err := mappings.NewPgStore(s.pool).List(ctx)
		if err != nil {
			return err
		}
		snap.ItemMap = make(map[string]mappings.AccountSet, len(list))
		for _, m := range list {
			snap.ItemMap[m.Category] = m.Accounts
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if snap.COA, err = accounts.NewRepository(s.pool).List(ctx); err != nil {
			return err
		}
		snap.Taxes, err = taxes.NewRepository(s.pool).List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Journal, err = ledger.NewStore(s.pool).All(ctx)
		return err
	})
	g.Go(func() error {
		layers, err := costing.NewPgStore(s.pool).AllLayers(ctx)
		if err != nil {
			return err
		}
		snap.Stock = make(map[string][]StockBatch)
		for _, l := range layers {
			snap.Stock[l.SKU] = append(snap.Stock[l.SKU], StockBatch{Qty: l.Qty, UnitCost: l.UnitCost})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("backup: export: %w", err)
	}
	return snap, nil
}

// Import replaces the entire state with the snapshot in one transaction.
func (s *Service) Import(ctx context.Context, snap Snapshot) error {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		imp := importer{tx: tx}
		if err := imp.clearAll(ctx); err != nil {
			return err
		}
		return imp.load(ctx, snap)
	})
	if err != nil {
		return fmt.Errorf("backup: import: %w", err)
	}
	s.logger.InfoContext(ctx, "snapshot imported",
		"items", len(snap.Items), "journal_lines", len(snap.Journal))
	s.bump(ctx)
	return nil
}

// Reset wipes transactional state and masterdata, including document number
// sequences, so numbering restarts at 1.
func (s *Service) Reset(ctx context.Context) error {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return importer{tx: tx}.clearAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("backup: reset: %w", err)
	}
	s.logger.WarnContext(ctx, "full reset performed")
	s.bump(ctx)
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.WarnContext(ctx, "cache bump failed", "error", err)
	}
}
