package idx_test

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	id := idx.New()
	require.False(t, id.IsZero())
	require.Len(t, id.String(), 26, "ULIDs are 26 characters in Crockford base32")

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestNewIsMonotonicWithinSameMillisecond(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = idx.NewAt(now).String()
	}

	require.True(t, sort.StringsAreSorted(ids), "ids minted at the same instant must still sort")
	for i := 1; i < len(ids); i++ {
		require.NotEqual(t, ids[i-1], ids[i])
	}
}

func TestNewIsSafeForConcurrentUse(t *testing.T) {
	t.Parallel()

	const goroutines = 8
	const perGoroutine = 200

	var mu sync.Mutex
	seen := make(map[idx.ID]bool, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]idx.ID, 0, perGoroutine)
			for range perGoroutine {
				local = append(local, idx.New())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, goroutines*perGoroutine, "all generated ids must be unique")
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		id := idx.New()
		parsed, err := idx.Parse("  " + id.String() + "  ")
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, s := range []string{"", "   ", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA"} {
			_, err := idx.Parse(s)
			require.ErrorIs(t, err, idx.ErrInvalid, "input %q", s)
		}
	})
}

func TestTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	id := idx.NewAt(at)
	require.WithinDuration(t, at, id.Time(), time.Millisecond)

	require.True(t, idx.Zero.Time().IsZero())
	require.True(t, idx.ID("garbage").Time().IsZero())
}
