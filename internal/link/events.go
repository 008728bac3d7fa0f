package link

import (
	"sync"

	"github.com/yanun0323/logs"

	"tradelink/internal/wire"
)

// Message is raised for every envelope a client receives.
type Message struct {
	Type   wire.MessageType
	Source string
}

// Listeners is an ordered list of callbacks for one event kind. Emitting
// with no listeners is a no-op, and a panicking listener does not stop
// delivery to the ones after it.
type Listeners[T any] struct {
	mu      sync.RWMutex
	nextID  uint64
	entries []listener[T]
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// Add registers fn and returns a func that removes it again.
func (l *Listeners[T]) Add(fn func(T)) (remove func()) {
	if fn == nil {
		return func() {}
	}

	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listener[T]{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of registered listeners.
func (l *Listeners[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// emit calls every listener with v and returns how many of them panicked.
func (l *Listeners[T]) emit(v T) (panics int) {
	l.mu.RLock()
	entries := l.entries
	l.mu.RUnlock()

	for _, e := range entries {
		if !call(e.fn, v) {
			panics++
		}
	}
	return panics
}

func call[T any](fn func(T), v T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("listener panic: %v", r)
			ok = false
		}
	}()
	fn(v)
	return true
}
