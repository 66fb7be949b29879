package kblock

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestQueue(t *testing.T) {
	t.Run("fifo order", func(t *testing.T) {
		q := newQueue[int](0)
		ctx := context.Background()
		for i := range 3 {
			assert.NoError(t, q.push(ctx, i))
		}
		assert.Equal(t, 3, q.len())
		for i := range 3 {
			v, ok := q.pop(ctx)
			assert.True(t, ok)
			assert.Equal(t, i, v)
		}
	})

	t.Run("closed queue drains then reports empty", func(t *testing.T) {
		q := newQueue[int](0)
		ctx := context.Background()
		assert.NoError(t, q.push(ctx, 1))
		q.close()
		assert.IsError(t, q.push(ctx, 2), ErrDeclined)

		v, ok := q.pop(ctx)
		assert.True(t, ok)
		assert.Equal(t, 1, v)
		_, ok = q.pop(ctx)
		assert.False(t, ok)
	})

	t.Run("push blocks at capacity until ctx is done", func(t *testing.T) {
		q := newQueue[int](1)
		assert.NoError(t, q.push(context.Background(), 1))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.IsError(t, q.push(ctx, 2), context.DeadlineExceeded)
		assert.Equal(t, 1, q.len())
	})

	t.Run("pop unblocks a full push", func(t *testing.T) {
		q := newQueue[int](1)
		ctx := context.Background()
		assert.NoError(t, q.push(ctx, 1))

		pushed := make(chan error, 1)
		go func() { pushed <- q.push(ctx, 2) }()

		v, ok := q.pop(ctx)
		assert.True(t, ok)
		assert.Equal(t, 1, v)
		assert.NoError(t, <-pushed)
		assert.Equal(t, 1, q.len())
	})

	t.Run("abort discards items and wakes consumers", func(t *testing.T) {
		q := newQueue[int](0)
		done := make(chan bool, 1)
		go func() {
			_, ok := q.pop(context.Background())
			done <- ok
		}()
		q.abort()
		assert.False(t, <-done)
		assert.Equal(t, 0, q.len())
	})
}
