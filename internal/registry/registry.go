// Package registry tracks the peers registered with a server-role link:
// their stock and index subscriptions and their last heartbeat.
//
// A record's three attributes live in one struct, so they are created,
// updated and removed together. All methods are safe for concurrent use.
package registry

import (
	"sort"
	"sync"
	"time"

	"tradelink/internal/wire"
)

// Record is a snapshot of one registered peer.
type Record struct {
	Identity      string
	Stocks        wire.Basket
	Indices       wire.Basket
	LastHeartbeat time.Time
}

type peer struct {
	stocks      wire.Basket
	stockSet    wire.TokenSet
	indices     wire.Basket
	indexSet    wire.TokenSet
	heartbeat   time.Time
	registerSeq uint64
}

// Registry is the table of registered peers.
type Registry struct {
	mu    sync.RWMutex
	peers map[string]*peer
	seq   uint64
	now   func() time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		peers: make(map[string]*peer),
		now:   time.Now,
	}
}

// Register adds id with empty subscriptions. Registering a known id only
// refreshes its heartbeat.
func (r *Registry) Register(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.peers[id]; ok {
		p.heartbeat = r.now()
		return false
	}
	r.seq++
	r.peers[id] = &peer{
		stocks:      wire.Basket{},
		stockSet:    wire.TokenSet{},
		indices:     wire.Basket{},
		indexSet:    wire.TokenSet{},
		heartbeat:   r.now(),
		registerSeq: r.seq,
	}
	return true
}

// SetStocks replaces the stock subscriptions of a known peer.
func (r *Registry) SetStocks(id string, list wire.Basket) bool {
	return r.update(id, func(p *peer) {
		p.stocks = list
		p.stockSet = list.Tokens()
	})
}

// SetIndices replaces the index subscriptions of a known peer.
func (r *Registry) SetIndices(id string, list wire.Basket) bool {
	return r.update(id, func(p *peer) {
		p.indices = list
		p.indexSet = list.Tokens()
	})
}

// ClearStocks empties the stock subscriptions of a known peer.
func (r *Registry) ClearStocks(id string) bool {
	return r.SetStocks(id, wire.Basket{})
}

// ClearIndices empties the index subscriptions of a known peer.
func (r *Registry) ClearIndices(id string) bool {
	return r.SetIndices(id, wire.Basket{})
}

// Heartbeat refreshes the liveness timestamp of a known peer.
func (r *Registry) Heartbeat(id string) bool {
	return r.update(id, func(*peer) {})
}

// Unregister removes the record for id.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.peers[id]; !ok {
		return false
	}
	delete(r.peers, id)
	return true
}

// update applies fn to a known peer and refreshes its heartbeat.
// Unknown ids are ignored.
func (r *Registry) update(id string, fn func(*peer)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.peers[id]
	if !ok {
		return false
	}
	fn(p)
	p.heartbeat = r.now()
	return true
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Get returns a snapshot of one record.
func (r *Registry) Get(id string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.peers[id]
	if !ok {
		return Record{}, false
	}
	return p.record(id), true
}

// AllIdentities lists every registered peer in registration order.
func (r *Registry) AllIdentities() []string {
	return r.collect(func(*peer) bool { return true })
}

// SubscribedTo lists peers whose stock subscriptions contain symbol.
func (r *Registry) SubscribedTo(symbol string) []string {
	return r.collect(func(p *peer) bool { return p.stockSet.Contains(symbol) })
}

// SubscribedToIndex lists peers whose index subscriptions contain name.
func (r *Registry) SubscribedToIndex(name string) []string {
	return r.collect(func(p *peer) bool { return p.indexSet.Contains(name) })
}

// Stale lists peers whose last heartbeat is older than maxAge.
func (r *Registry) Stale(maxAge time.Duration) []string {
	cutoff := r.now().Add(-maxAge)
	return r.collect(func(p *peer) bool { return p.heartbeat.Before(cutoff) })
}

func (r *Registry) collect(match func(*peer) bool) []string {
	r.mu.RLock()
	type hit struct {
		id  string
		seq uint64
	}
	hits := make([]hit, 0, len(r.peers))
	for id, p := range r.peers {
		if match(p) {
			hits = append(hits, hit{id: id, seq: p.registerSeq})
		}
	}
	r.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

func (p *peer) record(id string) Record {
	return Record{
		Identity:      id,
		Stocks:        append(wire.Basket{}, p.stocks...),
		Indices:       append(wire.Basket{}, p.indices...),
		LastHeartbeat: p.heartbeat,
	}
}
