package vouchers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daftarhq/daftar/internal/accounting/ledger"
	"github.com/daftarhq/daftar/internal/accounting/mappings"
	"github.com/daftarhq/daftar/internal/accounting/sequence"
	"github.com/daftarhq/daftar/internal/accounting/shared"
	"github.com/daftarhq/daftar/internal/masterdata/items"
	internalShared "github.com/daftarhq/daftar/internal/shared"
)

type fakeLayer struct {
	sku      string
	qty      float64
	unitCost float64
}

type fakeState struct {
	seq      map[string]int64
	layers   []fakeLayer
	lines    []ledger.Line
	docs     []Document
	docLines []DocumentLine
}

func (s *fakeState) clone() *fakeState {
	out := &fakeState{seq: make(map[string]int64, len(s.seq))}
	for k, v := range s.seq {
		out.seq[k] = v
	}
	out.layers = append([]fakeLayer(nil), s.layers...)
	out.lines = append([]ledger.Line(nil), s.lines...)
	out.docs = append([]Document(nil), s.docs...)
	out.docLines = append([]DocumentLine(nil), s.docLines...)
	return out
}

// fakeRepo runs each unit of work against a copy of the state and commits the
// copy only when the function succeeds, mirroring transaction rollback.
type fakeRepo struct {
	items    map[string]items.Item
	mappings map[string]mappings.AccountSet
	state    *fakeState
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:    make(map[string]items.Item),
		mappings: make(map[string]mappings.AccountSet),
		state:    &fakeState{seq: make(map[string]int64)},
	}
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	work := r.state.clone()
	if err := fn(ctx, &fakeTx{repo: r, state: work}); err != nil {
		return err
	}
	r.state = work
	return nil
}

type fakeTx struct {
	repo  *fakeRepo
	state *fakeState
}

func (t *fakeTx) NextNumber(_ context.Context, prefix string) (string, error) {
	t.state.seq[prefix]++
	return sequence.Format(prefix, t.state.seq[prefix]), nil
}

func (t *fakeTx) Item(_ context.Context, sku string) (items.Item, error) {
	item, ok := t.repo.items[sku]
	if !ok {
		return items.Item{}, internalShared.ErrNotFound
	}
	return item, nil
}

func (t *fakeTx) ResolveAccounts(_ context.Context, category string) (mappings.AccountSet, error) {
	if set, ok := t.repo.mappings[category]; ok {
		return set, nil
	}
	if set, ok := t.repo.mappings[mappings.DefaultCategory]; ok {
		return set, nil
	}
	return mappings.FallbackAccounts, nil
}

func (t *fakeTx) PostLine(_ context.Context, line ledger.Line) error {
	t.state.lines = append(t.state.lines, line)
	return nil
}

func (t *fakeTx) AddLayer(_ context.Context, sku string, qty, unitCost float64) error {
	t.state.layers = append(t.state.layers, fakeLayer{sku: sku, qty: qty, unitCost: unitCost})
	return nil
}

func (t *fakeTx) ConsumeLayers(_ context.Context, sku string, qty float64) (float64, error) {
	need := qty
	cost := 0.0
	for _, l := range t.state.layers {
		if l.sku != sku || need <= 0 {
			continue
		}
		take := l.qty
		if take > need {
			take = need
		}
		cost += take * l.unitCost
		need -= take
	}
	if need > 0 {
		return 0, fmt.Errorf("%w: %s", shared.ErrInsufficientStock, sku)
	}
	need = qty
	remaining := t.state.layers[:0]
	for _, l := range t.state.layers {
		if l.sku != sku || need <= 0 {
			remaining = append(remaining, l)
			continue
		}
		if l.qty > need {
			l.qty -= need
			need = 0
			remaining = append(remaining, l)
			continue
		}
		need -= l.qty
	}
	t.state.layers = remaining
	return cost, nil
}

func (t *fakeTx) InsertDocument(_ context.Context, doc Document) error {
	for _, existing := range t.state.docs {
		if existing.No == doc.No {
			return fmt.Errorf("%w: %s", shared.ErrDuplicateDocument, doc.No)
		}
	}
	t.state.docs = append(t.state.docs, doc)
	return nil
}

func (t *fakeTx) InsertDocumentLine(_ context.Context, line DocumentLine) error {
	t.state.docLines = append(t.state.docLines, line)
	return nil
}

type stubRates struct {
	rate float64
}

func (s stubRates) VATRate(context.Context) (float64, error) { return s.rate, nil }

type captureAudit struct {
	logs []internalShared.AuditLog
}

func (a *captureAudit) Record(_ context.Context, log internalShared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type countBumper struct {
	bumps int
}

func (b *countBumper) Bump(context.Context) error {
	b.bumps++
	return nil
}

func testDate() time.Time {
	return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
}

func requireBalancedByDoc(t *testing.T, lines []ledger.Line) {
	t.Helper()
	byDoc := map[string][2]float64{}
	for _, l := range lines {
		sums := byDoc[l.DocNo]
		sums[0] += l.Debit
		sums[1] += l.Credit
		byDoc[l.DocNo] = sums
	}
	for docNo, sums := range byDoc {
		require.InDeltaf(t, sums[0], sums[1], 0.005, "document %s must balance", docNo)
	}
}

func lineFor(t *testing.T, lines []ledger.Line, account string) ledger.Line {
	t.Helper()
	for _, l := range lines {
		if l.Account == account {
			return l
		}
	}
	t.Fatalf("no line posted to account %s", account)
	return ledger.Line{}
}

func TestPostSaleCashWithVAT(t *testing.T) {
	repo := newFakeRepo()
	repo.items["SKU1"] = items.Item{SKU: "SKU1", Name: "Widget", Cat5: "tools"}
	repo.mappings["tools"] = mappings.AccountSet{Inventory: "1-03-01", Sales: "4-01-01", COGS: "5-01-01"}
	repo.state.layers = []fakeLayer{{sku: "SKU1", qty: 10, unitCost: 40}}

	audit := &captureAudit{}
	bumper := &countBumper{}
	svc := NewService(repo, stubRates{rate: 0.15}, audit, bumper, testLogger())

	result, err := svc.PostSale(context.Background(), SaleInput{
		Date: testDate(), SKU: "SKU1", Qty: 2, Price: 100, Settlement: SettlementCash,
	})
	require.NoError(t, err)

	require.Equal(t, "AR-000001", result.DocNo)
	require.Equal(t, 200.0, result.Base)
	require.Equal(t, 30.0, result.VAT)
	require.Equal(t, 230.0, result.Total)
	require.Equal(t, 80.0, result.COGS)
	require.Equal(t, "Widget", result.ItemName)

	require.Len(t, repo.state.lines, 5)
	require.Equal(t, 230.0, lineFor(t, repo.state.lines, AccountCash).Debit)
	require.Equal(t, 200.0, lineFor(t, repo.state.lines, "4-01-01").Credit)
	require.Equal(t, 30.0, lineFor(t, repo.state.lines, AccountVATOutput).Credit)
	require.Equal(t, 80.0, lineFor(t, repo.state.lines, "5-01-01").Debit)
	require.Equal(t, 80.0, lineFor(t, repo.state.lines, "1-03-01").Credit)
	requireBalancedByDoc(t, repo.state.lines)

	require.Len(t, repo.state.docs, 1)
	require.Equal(t, DocTypeSale, repo.state.docs[0].Type)
	require.Equal(t, DefaultCurrency, repo.state.docs[0].Currency)
	require.Len(t, repo.state.docLines, 1)
	require.Equal(t, 200.0, repo.state.docLines[0].Net)

	// Layer partially consumed.
	require.Equal(t, []fakeLayer{{sku: "SKU1", qty: 8, unitCost: 40}}, repo.state.layers)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "voucher.sale", audit.logs[0].Action)
	require.Equal(t, "AR-000001", audit.logs[0].EntityID)
	require.Equal(t, 1, bumper.bumps)
}

func TestPostSaleOnAccountDebitsReceivable(t *testing.T) {
	repo := newFakeRepo()
	repo.items["SKU1"] = items.Item{SKU: "SKU1", Name: "Widget", Cat5: "tools"}
	repo.state.layers = []fakeLayer{{sku: "SKU1", qty: 5, unitCost: 10}}
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	_, err := svc.PostSale(context.Background(), SaleInput{
		Date: testDate(), SKU: "SKU1", Qty: 1, Price: 50, Settlement: SettlementOnAccount,
	})
	require.NoError(t, err)
	require.Equal(t, 57.5, lineFor(t, repo.state.lines, AccountReceivable).Debit)
}

func TestPostSaleUnknownItem(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	_, err := svc.PostSale(context.Background(), SaleInput{
		Date: testDate(), SKU: "NOPE", Qty: 1, Price: 10, Settlement: SettlementCash,
	})
	require.ErrorIs(t, err, shared.ErrUnknownItem)
	require.Empty(t, repo.state.lines)
	require.Empty(t, repo.state.docs)
}

func TestPostSaleInsufficientStockRollsBack(t *testing.T) {
	repo := newFakeRepo()
	repo.items["SKU1"] = items.Item{SKU: "SKU1", Name: "Widget", Cat5: "tools"}
	repo.state.layers = []fakeLayer{{sku: "SKU1", qty: 1, unitCost: 40}}
	bumper := &countBumper{}
	svc := NewService(repo, stubRates{rate: 0.15}, nil, bumper, testLogger())

	_, err := svc.PostSale(context.Background(), SaleInput{
		Date: testDate(), SKU: "SKU1", Qty: 5, Price: 100, Settlement: SettlementCash,
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	// Nothing committed: no lines, no document, sequence not advanced,
	// layers untouched.
	require.Empty(t, repo.state.lines)
	require.Empty(t, repo.state.docs)
	require.Empty(t, repo.state.seq)
	require.Equal(t, []fakeLayer{{sku: "SKU1", qty: 1, unitCost: 40}}, repo.state.layers)
	require.Zero(t, bumper.bumps)
}

func TestPostSaleRejectsNonPositiveAmounts(t *testing.T) {
	svc := NewService(newFakeRepo(), stubRates{rate: 0.15}, nil, nil, testLogger())
	_, err := svc.PostSale(context.Background(), SaleInput{Date: testDate(), SKU: "SKU1", Qty: 0, Price: 10})
	require.ErrorIs(t, err, shared.ErrInvalidAmount)
	_, err = svc.PostSale(context.Background(), SaleInput{Date: testDate(), SKU: "SKU1", Qty: 1, Price: -1})
	require.ErrorIs(t, err, shared.ErrInvalidAmount)
}

func TestPostPurchaseAddsLayer(t *testing.T) {
	repo := newFakeRepo()
	repo.items["SKU1"] = items.Item{SKU: "SKU1", Name: "Widget", Cat5: "tools"}
	repo.mappings["tools"] = mappings.AccountSet{Inventory: "1-03-01", Sales: "4-01-01", COGS: "5-01-01"}
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	result, err := svc.PostPurchase(context.Background(), PurchaseInput{
		Date: testDate(), SKU: "SKU1", Qty: 4, Price: 25, Settlement: SettlementOnAccount,
	})
	require.NoError(t, err)

	require.Equal(t, "AP-000001", result.DocNo)
	require.Equal(t, 100.0, result.Base)
	require.Equal(t, 15.0, result.VAT)
	require.Equal(t, 115.0, result.Total)

	require.Equal(t, 100.0, lineFor(t, repo.state.lines, "1-03-01").Debit)
	require.Equal(t, 15.0, lineFor(t, repo.state.lines, AccountVATInput).Debit)
	require.Equal(t, 115.0, lineFor(t, repo.state.lines, AccountDefaultPayable).Credit)
	requireBalancedByDoc(t, repo.state.lines)

	require.Equal(t, []fakeLayer{{sku: "SKU1", qty: 4, unitCost: 25}}, repo.state.layers)
}

func TestPostPurchaseCashCreditsBank(t *testing.T) {
	repo := newFakeRepo()
	repo.items["SKU1"] = items.Item{SKU: "SKU1", Name: "Widget", Cat5: "tools"}
	svc := NewService(repo, stubRates{rate: 0}, nil, nil, testLogger())

	_, err := svc.PostPurchase(context.Background(), PurchaseInput{
		Date: testDate(), SKU: "SKU1", Qty: 1, Price: 30, Settlement: SettlementCash,
		SupplierAccount: "2-01-01-777-000",
	})
	require.NoError(t, err)
	// Cash settlement always pays from the bank, even with a supplier account.
	require.Equal(t, 30.0, lineFor(t, repo.state.lines, AccountBank).Credit)
}

func TestPostReceiptAndPayment(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	receipt, err := svc.PostReceipt(context.Background(), TransferInput{
		Date: testDate(), FromAccount: AccountReceivable, ToAccount: AccountCash, Amount: 500,
	})
	require.NoError(t, err)
	require.Equal(t, "RC-000001", receipt.DocNo)
	require.Equal(t, 500.0, receipt.Total)

	payment, err := svc.PostPayment(context.Background(), TransferInput{
		Date: testDate(), FromAccount: AccountBank, ToAccount: AccountDefaultPayable, Amount: 120,
	})
	require.NoError(t, err)
	require.Equal(t, "PY-000001", payment.DocNo)

	require.Equal(t, 500.0, lineFor(t, repo.state.lines, AccountCash).Debit)
	require.Equal(t, 500.0, lineFor(t, repo.state.lines, AccountReceivable).Credit)
	requireBalancedByDoc(t, repo.state.lines)
	require.Equal(t, DocTypeReceipt, repo.state.docs[0].Type)
	require.Equal(t, DocTypePayment, repo.state.docs[1].Type)
}

func TestPostTransferRequiresAccounts(t *testing.T) {
	svc := NewService(newFakeRepo(), stubRates{rate: 0.15}, nil, nil, testLogger())
	_, err := svc.PostReceipt(context.Background(), TransferInput{Date: testDate(), ToAccount: AccountCash, Amount: 10})
	require.ErrorIs(t, err, shared.ErrAccountRequired)
}

func TestPostJournal(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	result, err := svc.PostJournal(context.Background(), JournalInput{
		Date: testDate(), DebitAccount: "6-01-01", CreditAccount: AccountBank, Amount: 75.5,
	})
	require.NoError(t, err)
	require.Equal(t, "JV-000001", result.DocNo)
	require.Equal(t, 75.5, lineFor(t, repo.state.lines, "6-01-01").Debit)
	require.Equal(t, 75.5, lineFor(t, repo.state.lines, AccountBank).Credit)
	requireBalancedByDoc(t, repo.state.lines)
}

func TestPostSalesReturnRestoresStockAndReversesCOGS(t *testing.T) {
	repo := newFakeRepo()
	repo.items["SKU1"] = items.Item{SKU: "SKU1", Name: "Widget", Cat5: "tools"}
	repo.mappings["tools"] = mappings.AccountSet{Inventory: "1-03-01", Sales: "4-01-01", COGS: "5-01-01"}
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	result, err := svc.PostSalesReturn(context.Background(), SalesReturnInput{
		Date: testDate(), SKU: "SKU1", Qty: 2, Price: 100, Refund: SettlementCash,
	})
	require.NoError(t, err)

	require.Equal(t, "CRN-000001", result.DocNo)
	require.Equal(t, 200.0, result.Base)
	require.Equal(t, 230.0, result.Total)

	require.Equal(t, 200.0, lineFor(t, repo.state.lines, AccountSalesReturns).Debit)
	require.Equal(t, 30.0, lineFor(t, repo.state.lines, AccountVATOutput).Debit)
	require.Equal(t, 230.0, lineFor(t, repo.state.lines, AccountCash).Credit)
	require.Equal(t, 200.0, lineFor(t, repo.state.lines, "1-03-01").Debit)
	require.Equal(t, 200.0, lineFor(t, repo.state.lines, "5-01-01").Credit)
	requireBalancedByDoc(t, repo.state.lines)

	require.Equal(t, []fakeLayer{{sku: "SKU1", qty: 2, unitCost: 100}}, repo.state.layers)
}

func TestPostSalesReturnUnknownSKUUsesFallback(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, stubRates{rate: 0}, nil, nil, testLogger())

	result, err := svc.PostSalesReturn(context.Background(), SalesReturnInput{
		Date: testDate(), SKU: "GONE", Qty: 1, Price: 20, Refund: SettlementOnAccount,
	})
	require.NoError(t, err)
	require.Empty(t, result.ItemName)
	require.Equal(t, 20.0, lineFor(t, repo.state.lines, mappings.FallbackAccounts.Inventory).Debit)
	require.Equal(t, 20.0, lineFor(t, repo.state.lines, AccountReceivable).Credit)
}

func TestPostPurchaseReturn(t *testing.T) {
	repo := newFakeRepo()
	repo.items["SKU1"] = items.Item{SKU: "SKU1", Name: "Widget", Cat5: "tools"}
	repo.mappings["tools"] = mappings.AccountSet{Inventory: "1-03-01", Sales: "4-01-01", COGS: "5-01-01"}
	repo.state.layers = []fakeLayer{{sku: "SKU1", qty: 10, unitCost: 25}}
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	result, err := svc.PostPurchaseReturn(context.Background(), PurchaseReturnInput{
		Date: testDate(), SKU: "SKU1", Qty: 3, Price: 25,
	})
	require.NoError(t, err)

	require.Equal(t, "DRN-000001", result.DocNo)
	require.Equal(t, 75.0, lineFor(t, repo.state.lines, "1-03-01").Credit)
	require.InDelta(t, 11.25, lineFor(t, repo.state.lines, AccountVATInput).Credit, 0.001)
	require.InDelta(t, 86.25, lineFor(t, repo.state.lines, AccountDefaultPayable).Debit, 0.001)
	requireBalancedByDoc(t, repo.state.lines)

	require.Equal(t, []fakeLayer{{sku: "SKU1", qty: 7, unitCost: 25}}, repo.state.layers)
}

func TestPostPurchaseReturnWithoutStockStillPosts(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	result, err := svc.PostPurchaseReturn(context.Background(), PurchaseReturnInput{
		Date: testDate(), SKU: "SKU1", Qty: 2, Price: 10,
	})
	require.NoError(t, err)
	require.Equal(t, "DRN-000001", result.DocNo)
	require.NotEmpty(t, repo.state.lines)
	requireBalancedByDoc(t, repo.state.lines)
}

func TestSequencesArePerPrefix(t *testing.T) {
	repo := newFakeRepo()
	repo.items["SKU1"] = items.Item{SKU: "SKU1", Name: "Widget", Cat5: "tools"}
	repo.state.layers = []fakeLayer{{sku: "SKU1", qty: 100, unitCost: 1}}
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	for i := 0; i < 3; i++ {
		_, err := svc.PostSale(context.Background(), SaleInput{
			Date: testDate(), SKU: "SKU1", Qty: 1, Price: 10, Settlement: SettlementCash,
		})
		require.NoError(t, err)
	}
	result, err := svc.PostPurchase(context.Background(), PurchaseInput{
		Date: testDate(), SKU: "SKU1", Qty: 1, Price: 1, Settlement: SettlementCash,
	})
	require.NoError(t, err)

	require.Equal(t, "AP-000001", result.DocNo)
	require.Equal(t, "AR-000003", repo.state.docs[2].No)
}

func TestRoundingToTheCent(t *testing.T) {
	repo := newFakeRepo()
	repo.items["SKU1"] = items.Item{SKU: "SKU1", Name: "Widget", Cat5: "tools"}
	repo.state.layers = []fakeLayer{{sku: "SKU1", qty: 100, unitCost: 0.333}}
	svc := NewService(repo, stubRates{rate: 0.15}, nil, nil, testLogger())

	result, err := svc.PostSale(context.Background(), SaleInput{
		Date: testDate(), SKU: "SKU1", Qty: 3, Price: 3.333, Settlement: SettlementCash,
	})
	require.NoError(t, err)

	// base = round2(3 * 3.333) = 10.00, vat = round2(10.00 * 0.15) = 1.50
	require.Equal(t, 10.0, result.Base)
	require.Equal(t, 1.5, result.VAT)
	require.Equal(t, 11.5, result.Total)
	require.Equal(t, 1.0, result.COGS)
	requireBalancedByDoc(t, repo.state.lines)
}

func TestAuditFailureDoesNotFailPosting(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, stubRates{rate: 0.15}, failingAudit{}, nil, testLogger())

	_, err := svc.PostJournal(context.Background(), JournalInput{
		Date: testDate(), DebitAccount: "6-01-01", CreditAccount: AccountBank, Amount: 10,
	})
	require.NoError(t, err)
	require.Len(t, repo.state.docs, 1)
}

type failingAudit struct{}

func (failingAudit) Record(context.Context, internalShared.AuditLog) error {
	return errors.New("audit sink down")
}

type failingBumper struct{}

func (failingBumper) Bump(context.Context) error {
	return errors.New("redis down")
}

func TestSideEffectFailuresAreLogged(t *testing.T) {
	repo := newFakeRepo()
	logs := &logBuffer{}
	svc := NewService(repo, stubRates{rate: 0.15}, failingAudit{}, failingBumper{}, slog.New(slog.NewTextHandler(logs, nil)))

	_, err := svc.PostJournal(context.Background(), JournalInput{
		Date: testDate(), DebitAccount: "6-01-01", CreditAccount: AccountBank, Amount: 10,
	})
	require.NoError(t, err)

	out := logs.String()
	require.Contains(t, out, "report cache bump failed")
	require.Contains(t, out, "redis down")
	require.Contains(t, out, "audit record failed")
	require.Contains(t, out, "audit sink down")
}

type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
