package mappings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daftarhq/daftar/internal/accounting/shared"
)

type memoryStore struct {
	byCategory map[string]AccountSet
}

func (s *memoryStore) FindByCategory(_ context.Context, category string) (AccountSet, error) {
	set, ok := s.byCategory[category]
	if !ok {
		return AccountSet{}, shared.ErrMappingNotFound
	}
	return set, nil
}

func TestResolveExactMatch(t *testing.T) {
	want := AccountSet{Inventory: "1-03-01-000-000", Sales: "4-01-01-000-000", COGS: "5-01-01-000-000"}
	resolver := NewResolver(&memoryStore{byCategory: map[string]AccountSet{"appliances": want}})

	got, err := resolver.Resolve(context.Background(), "appliances")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestResolveFallsBackToDefaultCategory(t *testing.T) {
	want := AccountSet{Inventory: "1-03-09-000-000", Sales: "4-01-09-000-000", COGS: "5-01-09-000-000"}
	resolver := NewResolver(&memoryStore{byCategory: map[string]AccountSet{DefaultCategory: want}})

	got, err := resolver.Resolve(context.Background(), "no-such-category")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestResolveHardFallback(t *testing.T) {
	resolver := NewResolver(&memoryStore{byCategory: map[string]AccountSet{}})

	got, err := resolver.Resolve(context.Background(), "no-such-category")
	require.NoError(t, err)
	require.Equal(t, FallbackAccounts, got)
}
