package vouchers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftarhq/daftar/internal/accounting/costing"
	"github.com/daftarhq/daftar/internal/accounting/ledger"
	"github.com/daftarhq/daftar/internal/accounting/mappings"
	"github.com/daftarhq/daftar/internal/accounting/sequence"
	"github.com/daftarhq/daftar/internal/accounting/shared"
	"github.com/daftarhq/daftar/internal/masterdata/items"
	"github.com/daftarhq/daftar/internal/platform/db"
)

// TxRepository is the narrow surface a posting sees inside its transaction.
// It stitches the sequence allocator, cost engine, mapping resolver, and
// ledger store over the same underlying transaction.
type TxRepository interface {
	NextNumber(ctx context.Context, prefix string) (string, error)
	Item(ctx context.Context, sku string) (items.Item, error)
	ResolveAccounts(ctx context.Context, category string) (mappings.AccountSet, error)
	PostLine(ctx context.Context, line ledger.Line) error
	AddLayer(ctx context.Context, sku string, qty, unitCost float64) error
	ConsumeLayers(ctx context.Context, sku string, qty float64) (float64, error)
	InsertDocument(ctx context.Context, doc Document) error
	InsertDocumentLine(ctx context.Context, line DocumentLine) error
}

// Repository opens units of work for voucher postings.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the Postgres-backed posting repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, newTxRepository(tx))
	})
}

type txRepository struct {
	tx       pgx.Tx
	seq      *sequence.PgAllocator
	items    items.Repository
	resolver *mappings.Resolver
	lines    *ledger.Store
	cost     *costing.Engine
}

func newTxRepository(tx pgx.Tx) *txRepository {
	return &txRepository{
		tx:       tx,
		seq:      sequence.NewPgAllocator(tx),
		items:    items.NewRepository(tx),
		resolver: mappings.NewResolver(mappings.NewPgStore(tx)),
		lines:    ledger.NewStore(tx),
		cost:     costing.NewEngine(costing.NewPgStore(tx)),
	}
}

func (t *txRepository) NextNumber(ctx context.Context, prefix string) (string, error) {
	return t.seq.Next(ctx, prefix)
}

func (t *txRepository) Item(ctx context.Context, sku string) (items.Item, error) {
	return t.items.Get(ctx, sku)
}

func (t *txRepository) ResolveAccounts(ctx context.Context, category string) (mappings.AccountSet, error) {
	return t.resolver.Resolve(ctx, category)
}

func (t *txRepository) PostLine(ctx context.Context, line ledger.Line) error {
	return t.lines.Insert(ctx, line)
}

func (t *txRepository) AddLayer(ctx context.Context, sku string, qty, unitCost float64) error {
	return t.cost.AddLayer(ctx, sku, qty, unitCost)
}

func (t *txRepository) ConsumeLayers(ctx context.Context, sku string, qty float64) (float64, error) {
	return t.cost.Consume(ctx, sku, qty)
}

func (t *txRepository) InsertDocument(ctx context.Context, doc Document) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO documents (doc_no, doc_type, doc_date, branch, cost_center, currency, base_amount, vat_amount, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.No, doc.Type, doc.Date, doc.Branch, doc.CostCenter, doc.Currency, doc.Base, doc.VAT, doc.Total,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", shared.ErrDuplicateDocument, doc.No)
		}
		return fmt.Errorf("vouchers: insert document: %w", err)
	}
	return nil
}

func (t *txRepository) InsertDocumentLine(ctx context.Context, line DocumentLine) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO document_lines (doc_no, sku, description, qty, price, net_amount)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		line.DocNo, line.SKU, line.Description, line.Qty, line.Price, line.Net,
	)
	if err != nil {
		return fmt.Errorf("vouchers: insert document line: %w", err)
	}
	return nil
}
