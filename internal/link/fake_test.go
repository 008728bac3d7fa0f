package link

import (
	"context"
	"sync"

	"tradelink/internal/errors"
	"tradelink/internal/wire"
	"tradelink/pkg/exception"
)

// network delivers requests between links in memory, synchronously.
type network struct {
	mu    sync.Mutex
	links map[string]*Link
	sent  []wire.Envelope
}

func newNetwork() *network {
	return &network{links: make(map[string]*Link)}
}

// join creates a link named id on the network.
func (n *network) join(id string, cfg Config) *Link {
	s := &fakeSender{net: n, id: id}
	l := New(s, cfg)
	n.mu.Lock()
	n.links[id] = l
	n.mu.Unlock()
	return l
}

func (n *network) leave(id string) {
	n.mu.Lock()
	delete(n.links, id)
	n.mu.Unlock()
}

// count returns how many requests of typ were sent from src.
func (n *network) count(src string, typ wire.MessageType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, env := range n.sent {
		if env.Source == src && env.Type == typ {
			c++
		}
	}
	return c
}

type fakeSender struct {
	net *network

	mu sync.Mutex
	id string
}

func (f *fakeSender) Identity() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *fakeSender) Found(name string) bool {
	f.net.mu.Lock()
	defer f.net.mu.Unlock()
	_, ok := f.net.links[name]
	return ok
}

func (f *fakeSender) Request(ctx context.Context, dest string, typ wire.MessageType, payload string) (int64, error) {
	env := wire.Envelope{Type: typ, Payload: payload, Source: f.Identity(), Dest: dest}

	f.net.mu.Lock()
	l, ok := f.net.links[dest]
	f.net.sent = append(f.net.sent, env)
	f.net.mu.Unlock()

	if !ok {
		return 0, errors.Wrapf(exception.ErrPeerNotFound, "resolve %s", dest)
	}
	return l.Dispatch(ctx, env), nil
}

func (f *fakeSender) Rebind(id string) error {
	f.mu.Lock()
	old := f.id
	f.id = id
	f.mu.Unlock()

	f.net.mu.Lock()
	defer f.net.mu.Unlock()
	if l, ok := f.net.links[old]; ok {
		delete(f.net.links, old)
		f.net.links[id] = l
	}
	return nil
}
