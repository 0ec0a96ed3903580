package telegram

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type job struct {
	key int64
	seq int
}

func TestDispatcherKeepsOrderPerKey(t *testing.T) {
	var mu sync.Mutex
	seen := map[int64][]int{}

	d := NewDispatcher(4, 8, func(_ context.Context, j job) {
		mu.Lock()
		seen[j.key] = append(seen[j.key], j.seq)
		mu.Unlock()
	})
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	ctx := context.Background()
	for seq := 0; seq < 50; seq++ {
		for _, key := range []int64{1, 2, 3, -7, 1 << 40} {
			require.True(t, d.Dispatch(ctx, key, job{key: key, seq: seq}))
		}
	}
	d.Close()
	require.NoError(t, <-done)

	require.Len(t, seen, 5)
	for key, seqs := range seen {
		require.Len(t, seqs, 50, "key %d", key)
		for i, s := range seqs {
			assert.Equal(t, i, s, "key %d out of order", key)
		}
	}
}

func TestDispatcherSlotIsStable(t *testing.T) {
	d := NewDispatcher(3, 1, func(context.Context, int) {})
	for _, key := range []int64{0, 1, 2, -1, -99, 1 << 62} {
		slot := d.slot(key)
		assert.GreaterOrEqual(t, slot, 0)
		assert.Less(t, slot, 3)
		assert.Equal(t, slot, d.slot(key))
	}
}

func TestDispatcherMinimumOneWorker(t *testing.T) {
	d := NewDispatcher(0, 1, func(context.Context, int) {})
	assert.Len(t, d.queues, 1)
}

func TestDispatchStopsOnCancelledContext(t *testing.T) {
	d := NewDispatcher(1, 0, func(context.Context, int) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, d.Dispatch(ctx, 1, 1))
}
