package mappings

import (
	"context"
	"errors"

	"github.com/daftarhq/daftar/internal/accounting/shared"
)

// Resolver applies the three-tier fallback: exact category, then
// DefaultCategory, then FallbackAccounts. Every posting therefore always has
// accounts to post to. Keep the tiers in this order; the mapping table is
// exposed read-only over HTTP so the substitution stays auditable.
type Resolver struct {
	store Store
}

// NewResolver builds a Resolver.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the account triple for a category.
func (r *Resolver) Resolve(ctx context.Context, category string) (AccountSet, error) {
	set, err := r.store.FindByCategory(ctx, category)
	if err == nil {
		return set, nil
	}
	if !errors.Is(err, shared.ErrMappingNotFound) {
		return AccountSet{}, err
	}

	set, err = r.store.FindByCategory(ctx, DefaultCategory)
	if err == nil {
		return set, nil
	}
	if !errors.Is(err, shared.ErrMappingNotFound) {
		return AccountSet{}, err
	}

	return FallbackAccounts, nil
}
