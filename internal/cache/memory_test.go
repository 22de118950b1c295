package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetTake(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(Config{Prefix: "t:"})

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	v, err = c.Take(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = c.Take(ctx, "k")
	assert.True(t, IsNotFound(err), "second take must miss")

	st, _ := c.Stats(ctx)
	assert.EqualValues(t, 2, st.Hits)
	assert.EqualValues(t, 1, st.Misses)
}

func TestMemory_TTLExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(Config{})

	require.NoError(t, c.Set(ctx, "short", "v", 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
	ok, _ := c.Exists(ctx, "short")
	assert.False(t, ok)
}

func TestMemory_BoundedEvictsSoonestExpiring(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(Config{MaxEntries: 3})

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Second)) // expira primero
	require.NoError(t, c.Set(ctx, "c", "3", time.Hour))
	require.NoError(t, c.Set(ctx, "d", "4", time.Hour))

	_, err := c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
	for _, k := range []string{"a", "c", "d"} {
		_, err := c.Get(ctx, k)
		assert.NoError(t, err, k)
	}

	// sobrescribir una key existente no desaloja
	require.NoError(t, c.Set(ctx, "a", "1b", time.Minute))
	st, _ := c.Stats(ctx)
	assert.EqualValues(t, 3, st.Keys)
	assert.EqualValues(t, 1, st.Evictions)
}

func TestMemory_BoundedSweepsExpiredBeforeEvicting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(Config{MaxEntries: 3, CleanupInterval: time.Hour})

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("stale%d", i), "v", 10*time.Millisecond))
	}
	time.Sleep(30 * time.Millisecond) // expirados, el janitor todavía no pasó

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("new%d", i), "v", time.Minute))
	}
	for i := 0; i < 3; i++ {
		_, err := c.Get(ctx, fmt.Sprintf("new%d", i))
		assert.NoError(t, err, "new%d", i)
	}

	st, _ := c.Stats(ctx)
	assert.EqualValues(t, 3, st.Keys)
	assert.EqualValues(t, 0, st.Evictions, "expired entries are swept, not evicted")
}

func TestMemory_ConcurrentSetsRespectCap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(Config{MaxEntries: 50})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, fmt.Sprintf("w%d-%d", w, j), "v", time.Minute)
			}
		}(i)
	}
	wg.Wait()

	st, _ := c.Stats(ctx)
	assert.LessOrEqual(t, st.Keys, int64(50))
}

func TestNew_UnknownKind(t *testing.T) {
	t.Parallel()
	_, err := New(Config{Kind: "memcached"})
	assert.Error(t, err)
}
