// Package link is the protocol engine shared by both ends of a connection.
// A Link answers as a broker when its identity is one of the broker names
// and as a client otherwise.
package link

import (
	"context"
	"sync"

	"tradelink/internal/cache"
	"tradelink/internal/obs"
	"tradelink/internal/registry"
	"tradelink/internal/state"
	"tradelink/internal/wire"
)

const (
	SimBroker  = "TL-BROKER-SIMU"
	LiveBroker = "TL-BROKER-LIVE"

	DefaultClient = "TradeLinkClient"
	DefaultServer = "TradeLinkServer"

	version = "2.0"
)

// Build is stamped at link time with -ldflags "-X tradelink/internal/link.Build=N".
var Build = "0"

// Version returns the protocol library version.
func Version() string {
	return version + "." + Build
}

// IsBroker reports whether name is one of the broker endpoint names.
func IsBroker(name string) bool {
	return name == SimBroker || name == LiveBroker
}

// Sender delivers requests to named peers.
type Sender interface {
	Identity() string
	Found(name string) bool
	Request(ctx context.Context, dest string, typ wire.MessageType, payload string) (int64, error)
}

// Rebinder is implemented by senders that can change their local identity.
type Rebinder interface {
	Rebind(identity string) error
}

// Recorder receives order requests and fills seen by a broker.
type Recorder interface {
	RecordOrder(o wire.Order)
	RecordFill(t wire.Trade)
}

// Config configures a Link.
type Config struct {
	// Peer is the broker a client talks to.
	Peer     string
	Metrics  *obs.Metrics
	Recorder Recorder
}

// Link dispatches inbound envelopes and exposes the local API of both roles.
type Link struct {
	sender   Sender
	metrics  *obs.Metrics
	recorder Recorder

	mu  sync.RWMutex
	him string

	server *serverRole
	client *clientRole

	GotMessage     Listeners[Message]
	GotTick        Listeners[wire.Tick]
	GotFill        Listeners[wire.Trade]
	GotIndexTick   Listeners[wire.IndexTick]
	GotOrder       Listeners[wire.Order]
	GotFillRequest Listeners[wire.Order]
}

// New creates a link that sends through s.
func New(s Sender, cfg Config) *Link {
	if cfg.Peer == "" {
		cfg.Peer = DefaultServer
	}
	l := &Link{
		sender:   s,
		metrics:  cfg.Metrics,
		recorder: cfg.Recorder,
		him:      cfg.Peer,
	}
	l.server = &serverRole{
		link:      l,
		registry:  registry.New(),
		positions: state.NewPositionBook(),
		ranges:    state.NewRangeBook(),
	}
	l.client = &clientRole{link: l}
	l.client.cache = cache.New(l)
	return l
}

// Me returns the local identity.
func (l *Link) Me() string {
	return l.sender.Identity()
}

// Him returns the broker a client talks to.
func (l *Link) Him() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.him
}

// SetHim points the client at another broker.
func (l *Link) SetHim(name string) {
	l.mu.Lock()
	l.him = name
	l.mu.Unlock()
}

// IsServer reports whether the link currently answers as a broker.
func (l *Link) IsServer() bool {
	return IsBroker(l.Me())
}

// role is one side of the protocol.
type role interface {
	handle(ctx context.Context, env wire.Envelope) int64
}

func (l *Link) role() role {
	if l.IsServer() {
		return l.server
	}
	return l.client
}

// Dispatch handles one inbound envelope and returns the reply value. It
// matches the transport handler signature.
func (l *Link) Dispatch(ctx context.Context, env wire.Envelope) int64 {
	return l.role().handle(ctx, env)
}

func (l *Link) emitted(panics int) {
	for range panics {
		l.metrics.IncListenerPanic()
	}
}
