// Package sequence issues monotonically increasing, prefix-scoped document numbers.
package sequence

import (
	"context"
	"fmt"

	"github.com/daftarhq/daftar/internal/platform/db"
)

// Allocator hands out the next document number for a prefix.
type Allocator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// Format renders a document number as {prefix}-{number:06d}.
func Format(prefix string, number int64) string {
	return fmt.Sprintf("%s-%06d", prefix, number)
}

// PgAllocator allocates numbers from the document_sequences table. The
// increment-and-fetch is a single statement, so concurrent callers on the
// same prefix can never observe the same number. Run it on the posting
// transaction's handle so an aborted voucher holds no committed sequence row.
type PgAllocator struct {
	db db.Querier
}

// NewPgAllocator builds an allocator over a pool or transaction.
func NewPgAllocator(q db.Querier) *PgAllocator {
	return &PgAllocator{db: q}
}

// Next allocates the next number for prefix, creating the row at 1 when absent.
func (a *PgAllocator) Next(ctx context.Context, prefix string) (string, error) {
	var number int64
	err := a.db.QueryRow(ctx, `
		INSERT INTO document_sequences (prefix, next_number)
		VALUES ($1, 1)
		ON CONFLICT (prefix)
		DO UPDATE SET next_number = document_sequences.next_number + 1
		RETURNING next_number
	`, prefix).Scan(&number)
	if err != nil {
		return "", fmt.Errorf("sequence: next %s: %w", prefix, err)
	}
	return Format(prefix, number), nil
}
