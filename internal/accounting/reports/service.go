package reports

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/daftarhq/daftar/internal/accounting/ledger"
	"github.com/daftarhq/daftar/internal/accounting/shared"
)

// SnapshotSource opens consistent ledger views for report building.
type SnapshotSource interface {
	WithSnapshot(ctx context.Context, fn func(ctx context.Context, reader Reader) error) error
}

// Service builds reports, with a Redis cache in front and singleflight so
// concurrent requests for the same report trigger one build.
type Service struct {
	repo  SnapshotSource
	cache *Cache
	sf    singleflight.Group
}

// NewService builds the report service. cache may be nil.
func NewService(repo SnapshotSource, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Ledger returns an account's lines with running balances.
func (s *Service) Ledger(ctx context.Context, account string, period Period) ([]LedgerRow, error) {
	if account == "" {
		return nil, shared.ErrAccountRequired
	}
	var rows []LedgerRow
	err := s.cached(ctx, "ledger", account+":"+periodKey(period), &rows, func(ctx context.Context) (any, error) {
		var out []LedgerRow
		err := s.repo.WithSnapshot(ctx, func(ctx context.Context, r Reader) error {
			lines, err := r.AccountLines(ctx, account, period)
			if err != nil {
				return err
			}
			out = BuildLedger(lines)
			return nil
		})
		return out, err
	})
	return rows, err
}

// Journal lists recent ledger lines, newest first. Not cached; the journal is
// a live view.
func (s *Service) Journal(ctx context.Context, filter ledger.JournalFilter) ([]ledger.Line, error) {
	var lines []ledger.Line
	err := s.repo.WithSnapshot(ctx, func(ctx context.Context, r Reader) error {
		var err error
		lines, err = r.Journal(ctx, filter)
		return err
	})
	return lines, err
}

// TrialBalance nets every account onto its natural side.
func (s *Service) TrialBalance(ctx context.Context, period Period) (TrialBalance, error) {
	var tb TrialBalance
	err := s.cached(ctx, "tb", periodKey(period), &tb, func(ctx context.Context) (any, error) {
		var out TrialBalance
		err := s.repo.WithSnapshot(ctx, func(ctx context.Context, r Reader) error {
			activity, err := r.Activity(ctx, period)
			if err != nil {
				return err
			}
			out = BuildTrialBalance(activity)
			return nil
		})
		return out, err
	})
	return tb, err
}

// IncomeStatement classifies the period's activity into a profit and loss.
func (s *Service) IncomeStatement(ctx context.Context, period Period) (IncomeStatement, error) {
	var pl IncomeStatement
	err := s.cached(ctx, "pl", periodKey(period), &pl, func(ctx context.Context) (any, error) {
		var out IncomeStatement
		err := s.repo.WithSnapshot(ctx, func(ctx context.Context, r Reader) error {
			activity, err := r.Activity(ctx, period)
			if err != nil {
				return err
			}
			out = BuildIncomeStatement(activity)
			return nil
		})
		return out, err
	})
	return pl, err
}

// BalanceSheet sums the position accounts as of the period end.
func (s *Service) BalanceSheet(ctx context.Context, period Period) (BalanceSheet, error) {
	var bs BalanceSheet
	err := s.cached(ctx, "bs", periodKey(period), &bs, func(ctx context.Context) (any, error) {
		var out BalanceSheet
		err := s.repo.WithSnapshot(ctx, func(ctx context.Context, r Reader) error {
			activity, err := r.Activity(ctx, period)
			if err != nil {
				return err
			}
			out = BuildBalanceSheet(activity)
			return nil
		})
		return out, err
	})
	return bs, err
}

// cached runs load through the version-keyed cache and singleflight. Cache
// key construction failing means Redis is unreachable; reports fall back to
// building directly rather than erroring.
func (s *Service) cached(ctx context.Context, name, scope string, dest any, load func(context.Context) (any, error)) error {
	key, err := s.cache.BuildKey(ctx, "reports", name, scope)
	if err != nil {
		value, err := load(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	raw, err, _ := s.sf.Do(key, func() (any, error) {
		var payload json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &payload, load); err != nil {
			return nil, err
		}
		return payload, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.(json.RawMessage), dest)
}

func periodKey(period Period) string {
	format := func(t *time.Time) string {
		if t == nil {
			return "open"
		}
		return t.Format("2006-01-02")
	}
	return format(period.From) + ":" + format(period.To)
}
