package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenersEmitEmpty(t *testing.T) {
	var l Listeners[int]
	assert.Equal(t, 0, l.emit(1))
	assert.Equal(t, 0, l.Len())
}

func TestListenersPanicIsolation(t *testing.T) {
	var (
		l   Listeners[int]
		got []int
	)
	l.Add(func(v int) { got = append(got, v) })
	l.Add(func(int) { panic("boom") })
	l.Add(func(v int) { got = append(got, v*10) })

	require.Equal(t, 1, l.emit(2))
	assert.Equal(t, []int{2, 20}, got)
}

func TestListenersRemove(t *testing.T) {
	var (
		l     Listeners[string]
		calls int
	)
	remove := l.Add(func(string) { calls++ })
	l.Add(func(string) { calls += 10 })
	require.Equal(t, 2, l.Len())

	remove()
	remove()
	assert.Equal(t, 1, l.Len())

	l.emit("x")
	assert.Equal(t, 10, calls)

	l.Add(nil)
	assert.Equal(t, 1, l.Len())
}
