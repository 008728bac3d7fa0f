package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue[int](2)
	require.NoError(t, q.TryPublish(1))
	require.NoError(t, q.TryPublish(2))
	require.ErrorIs(t, q.TryPublish(3), ErrQueueFull)

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, uint64(1), q.Dropped())
}

func TestQueueDrainsAfterClose(t *testing.T) {
	q := NewQueue[string](4)
	require.NoError(t, q.TryPublish("a"))
	require.NoError(t, q.TryPublish("b"))
	q.Close()
	q.Close()
	require.ErrorIs(t, q.TryPublish("c"), ErrQueueClosed)

	var got []string
	q.Run(context.Background(), func(s string) { got = append(got, s) })
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestQueueRunStopsOnContext(t *testing.T) {
	q := NewQueue[int](0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		q.Run(ctx, func(int) {})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}
