package sequence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	require.Equal(t, "AR-000001", Format("AR", 1))
	require.Equal(t, "CRN-000042", Format("CRN", 42))
	require.Equal(t, "JV-123456", Format("JV", 123456))
}

func TestMemoryAllocatorStrictlyIncreasing(t *testing.T) {
	alloc := NewMemoryAllocator()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		got, err := alloc.Next(ctx, "AR")
		require.NoError(t, err)
		require.Equal(t, Format("AR", int64(i)), got)
	}

	// Other prefixes keep their own counters.
	got, err := alloc.Next(ctx, "AP")
	require.NoError(t, err)
	require.Equal(t, "AP-000001", got)
}

func TestMemoryAllocatorConcurrentNoDuplicates(t *testing.T) {
	alloc := NewMemoryAllocator()
	ctx := context.Background()

	const callers = 50
	var wg sync.WaitGroup
	results := make(chan string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			no, err := alloc.Next(ctx, "RC")
			if err != nil {
				t.Error(err)
				return
			}
			results <- no
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, callers)
	for no := range results {
		require.False(t, seen[no], "duplicate document number %s", no)
		seen[no] = true
	}
	require.Len(t, seen, callers)
}
