package reports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/daftarhq/daftar/internal/accounting/ledger"
	"github.com/daftarhq/daftar/internal/accounting/shared"
)

// fakeSource serves canned data and counts snapshot opens so tests can tell
// cache hits from rebuilds.
type fakeSource struct {
	lines    map[string][]ledger.Line
	activity []AccountActivity
	opens    int
}

func (f *fakeSource) WithSnapshot(ctx context.Context, fn func(ctx context.Context, reader Reader) error) error {
	f.opens++
	return fn(ctx, fakeReader{src: f})
}

type fakeReader struct {
	src *fakeSource
}

func (r fakeReader) AccountLines(_ context.Context, account string, _ Period) ([]ledger.Line, error) {
	return r.src.lines[account], nil
}

func (r fakeReader) Journal(_ context.Context, filter ledger.JournalFilter) ([]ledger.Line, error) {
	var out []ledger.Line
	for _, lines := range r.src.lines {
		out = append(out, lines...)
	}
	return out, nil
}

func (r fakeReader) Activity(_ context.Context, _ Period) ([]AccountActivity, error) {
	return r.src.activity, nil
}

func testCache(t *testing.T) (*Cache, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), client
}

func TestLedgerRequiresAccount(t *testing.T) {
	svc := NewService(&fakeSource{}, nil)
	_, err := svc.Ledger(context.Background(), "", Period{})
	require.ErrorIs(t, err, shared.ErrAccountRequired)
}

func TestLedgerRunningBalanceThroughService(t *testing.T) {
	src := &fakeSource{lines: map[string][]ledger.Line{
		"1-01-01": {
			{DocNo: "AR-000001", Account: "1-01-01", Debit: 230},
			{DocNo: "PY-000001", Account: "1-01-01", Credit: 30},
		},
	}}
	svc := NewService(src, nil)

	rows, err := svc.Ledger(context.Background(), "1-01-01", Period{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 230.0, rows[0].Balance)
	require.Equal(t, 200.0, rows[1].Balance)
}

func TestTrialBalanceCachedUntilBump(t *testing.T) {
	src := &fakeSource{activity: []AccountActivity{
		{Account: "1-01-01", Name: "Cash", Side: "D", Debit: 100},
		{Account: "3-01-01", Name: "Capital", Side: "C", Credit: 100},
	}}
	cache, _ := testCache(t)
	svc := NewService(src, cache)
	ctx := context.Background()

	tb, err := svc.TrialBalance(ctx, Period{})
	require.NoError(t, err)
	require.Equal(t, 100.0, tb.TotalDebit)
	require.Equal(t, 1, src.opens)

	// Second call is served from Redis.
	tb, err = svc.TrialBalance(ctx, Period{})
	require.NoError(t, err)
	require.Equal(t, 100.0, tb.TotalCredit)
	require.Equal(t, 1, src.opens)

	// A version bump invalidates every cached report.
	require.NoError(t, cache.Bump(ctx))
	_, err = svc.TrialBalance(ctx, Period{})
	require.NoError(t, err)
	require.Equal(t, 2, src.opens)
}

func TestPeriodsGetDistinctCacheKeys(t *testing.T) {
	src := &fakeSource{activity: []AccountActivity{{Account: "1-01-01", Debit: 10}}}
	cache, _ := testCache(t)
	svc := NewService(src, cache)
	ctx := context.Background()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.TrialBalance(ctx, Period{})
	require.NoError(t, err)
	_, err = svc.TrialBalance(ctx, Period{From: &from})
	require.NoError(t, err)
	require.Equal(t, 2, src.opens)
}

func TestBalanceSheetThroughService(t *testing.T) {
	src := &fakeSource{activity: []AccountActivity{
		{Account: "1-01-01", Side: "D", Debit: 100},
		{Account: "3-01-01", Side: "C", Credit: 100},
	}}
	svc := NewService(src, nil)

	bs, err := svc.BalanceSheet(context.Background(), Period{})
	require.NoError(t, err)
	require.True(t, bs.Balanced)
	require.Equal(t, 100.0, bs.Assets)
}

func TestTrialBalanceCSV(t *testing.T) {
	src := &fakeSource{activity: []AccountActivity{
		{Account: "1-01-01", Name: "Cash", Side: "D", Debit: 1234.5},
		{Account: "3-01-01", Name: "Capital", Side: "C", Credit: 1234.5},
	}}
	svc := NewService(src, nil)

	payload, err := svc.TrialBalanceCSV(context.Background(), Period{})
	require.NoError(t, err)

	out := string(payload)
	require.True(t, strings.HasPrefix(out, "Account,Name,Debit,Credit,Balance\n"))
	require.Contains(t, out, "1-01-01,Cash")
	require.Contains(t, out, `1,234.50`)
	require.Contains(t, out, "Total")
}
