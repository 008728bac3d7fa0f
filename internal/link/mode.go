package link

import (
	"context"

	"github.com/yanun0323/logs"

	"tradelink/internal/errors"
	"tradelink/pkg/exception"
)

// Channels is the set of broker endpoints found running.
type Channels uint8

const (
	NoChannel   Channels = 0
	LiveChannel Channels = 1 << 0
	SimChannel  Channels = 1 << 1
)

func (c Channels) Has(ch Channels) bool {
	return c&ch != 0
}

func (c Channels) String() string {
	switch c {
	case NoChannel:
		return "none"
	case LiveChannel:
		return "live"
	case SimChannel:
		return "sim"
	case LiveChannel | SimChannel:
		return "live|sim"
	}
	return "unknown"
}

// Discover reports which broker endpoints are reachable.
func (l *Link) Discover() Channels {
	found := NoChannel
	if l.sender.Found(SimBroker) {
		found |= SimChannel
	}
	if l.sender.Found(LiveBroker) {
		found |= LiveChannel
	}
	return found
}

// GoLive moves this client to the live broker.
func (l *Link) GoLive(ctx context.Context) error {
	return l.switchBroker(ctx, LiveBroker)
}

// GoSim moves this client to the simulation broker.
func (l *Link) GoSim(ctx context.Context) error {
	return l.switchBroker(ctx, SimBroker)
}

func (l *Link) switchBroker(ctx context.Context, name string) error {
	if err := l.Disconnect(ctx); err != nil {
		return err
	}
	l.SetHim(name)
	return l.Register(ctx)
}

// GoSrv makes this link answer as the simulation broker.
func (l *Link) GoSrv() error {
	r, ok := l.sender.(Rebinder)
	if !ok {
		return errors.Wrap(exception.ErrInvalidArgument, "sender cannot change identity")
	}
	return r.Rebind(SimBroker)
}

// Mode connects to the broker on channel ch.
func (l *Link) Mode(ctx context.Context, ch Channels) error {
	switch ch {
	case LiveChannel:
		return l.GoLive(ctx)
	case SimChannel:
		return l.GoSim(ctx)
	}
	return errors.Wrapf(exception.ErrInvalidArgument, "mode %s", ch)
}

// TryMode is Mode that logs a missing broker instead of returning it.
func (l *Link) TryMode(ctx context.Context, ch Channels) bool {
	err := l.Mode(ctx, ch)
	if err == nil {
		return true
	}
	if errors.Is(err, exception.ErrPeerNotFound) {
		logs.Errorf("no %s broker instance was found, make sure the broker is running", ch)
		return false
	}
	logs.Errorf("switch to %s broker, err: %+v", ch, err)
	return false
}
