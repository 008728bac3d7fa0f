package transport

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"tradelink/internal/errors"
	"tradelink/internal/obs"
	"tradelink/internal/wire"
	"tradelink/pkg/exception"
	"tradelink/pkg/uds"
)

const (
	DefaultRequestTimeout = 5 * time.Second
	DefaultDialTimeout    = time.Second
)

// Handler answers one inbound envelope. The returned value is sent back as
// the reply.
type Handler func(ctx context.Context, env wire.Envelope) int64

// Config controls a Transport.
type Config struct {
	Dir            string
	Identity       string
	RequestTimeout time.Duration
	DialTimeout    time.Duration
	MaxFrameSize   int
	Metrics        *obs.Metrics
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = DefaultMaxFrameSize
	}
	return c
}

// Transport sends requests to named peers and serves requests addressed to
// the local identity. Outbound connections are kept, one per peer.
type Transport struct {
	cfg Config
	dir Directory

	mu       sync.Mutex
	identity string
	conns    map[string]*peerConn
	server   *uds.Server
}

// New creates a transport. It neither listens nor dials until asked.
func New(cfg Config) *Transport {
	cfg = cfg.withDefaults()
	return &Transport{
		cfg:      cfg,
		dir:      NewDirectory(cfg.Dir),
		identity: cfg.Identity,
		conns:    make(map[string]*peerConn),
	}
}

// Identity returns the local peer name.
func (t *Transport) Identity() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.identity
}

// Rebind changes the local identity. A listening transport moves to the new
// name's socket; a running Serve loop follows it.
func (t *Transport) Rebind(identity string) error {
	path, err := t.dir.Path(identity)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if identity == t.identity {
		return nil
	}
	old := t.server
	if old != nil {
		server, err := uds.NewServer(path)
		if err != nil {
			return err
		}
		if err := server.Listen(); err != nil {
			return err
		}
		t.server = server
	}
	t.identity = identity
	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (t *Transport) listener() *uds.Server {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.server
}

// Directory returns the peer directory.
func (t *Transport) Directory() Directory {
	return t.dir
}

// Found reports whether a peer named name is listening.
func (t *Transport) Found(name string) bool {
	return t.dir.Found(name)
}

// Request sends an envelope to dest and waits for its reply value.
func (t *Transport) Request(ctx context.Context, dest string, typ wire.MessageType, payload string) (int64, error) {
	start := time.Now()
	value, err := t.request(ctx, dest, typ, payload)
	t.cfg.Metrics.ObserveRequest(typ, time.Since(start), err)
	return value, err
}

func (t *Transport) request(ctx context.Context, dest string, typ wire.MessageType, payload string) (int64, error) {
	identity := t.Identity()
	if identity == "" {
		return 0, exception.ErrNoLocalIdentity
	}
	path, err := t.dir.Resolve(dest)
	if err != nil {
		return 0, err
	}
	pc, err := t.peer(ctx, dest, path)
	if err != nil {
		return 0, err
	}

	f := frame{
		ID:      uuid.New(),
		Kind:    kindRequest,
		Type:    typ,
		Source:  identity,
		Dest:    dest,
		Payload: payload,
	}
	ch, err := pc.await(f.ID)
	if err != nil {
		return 0, err
	}
	defer pc.forget(f.ID)

	if err := pc.write(f); err != nil {
		return 0, errors.Wrapf(err, "send %s to %s", typ, dest)
	}

	timer := time.NewTimer(t.cfg.RequestTimeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
		return 0, errors.Wrapf(exception.ErrRequestTimeout, "%s to %s", typ, dest)
	}
}

// peer returns the pooled connection to dest, dialing when needed.
func (t *Transport) peer(ctx context.Context, dest, path string) (*peerConn, error) {
	t.mu.Lock()
	if pc, ok := t.conns[dest]; ok {
		t.mu.Unlock()
		return pc, nil
	}
	t.mu.Unlock()

	client, err := uds.NewClient(path, t.cfg.DialTimeout)
	if err != nil {
		return nil, err
	}
	conn, err := client.Dial(ctx)
	if err != nil {
		return nil, errors.Wrapf(exception.ErrPeerNotFound, "dial %s: %v", dest, err)
	}

	t.mu.Lock()
	if existing, ok := t.conns[dest]; ok {
		t.mu.Unlock()
		_ = conn.Close()
		return existing, nil
	}
	pc := newPeerConn(conn, t.cfg.MaxFrameSize)
	t.conns[dest] = pc
	t.mu.Unlock()

	go func() {
		err := pc.readReplies()
		t.drop(dest, pc)
		if err != nil {
			logs.Infof("connection to %s closed, err: %+v", dest, err)
		}
	}()
	return pc, nil
}

func (t *Transport) drop(dest string, pc *peerConn) {
	t.mu.Lock()
	if t.conns[dest] == pc {
		delete(t.conns, dest)
	}
	t.mu.Unlock()
}

// Listen binds the local identity's socket.
func (t *Transport) Listen() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.identity == "" {
		return exception.ErrNoLocalIdentity
	}
	path, err := t.dir.Path(t.identity)
	if err != nil {
		return err
	}
	if t.server != nil {
		return exception.ErrAlreadyListeningUDS
	}
	server, err := uds.NewServer(path)
	if err != nil {
		return err
	}
	if err := server.Listen(); err != nil {
		return err
	}
	t.server = server
	return nil
}

// Serve answers inbound requests with h until ctx is done. It listens first
// when Listen has not been called.
func (t *Transport) Serve(ctx context.Context, h Handler) error {
	server := t.listener()
	if server == nil {
		if err := t.Listen(); err != nil {
			return err
		}
		server = t.listener()
	}

	stop := context.AfterFunc(ctx, func() {
		if s := t.listener(); s != nil {
			_ = s.Close()
		}
	})
	defer stop()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		active = make(map[*net.UnixConn]struct{})
	)
	defer func() {
		mu.Lock()
		for conn := range active {
			_ = conn.Close()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		conn, err := server.Accept()
		if err != nil {
			if next := t.listener(); next != nil && next != server && ctx.Err() == nil {
				server = next
				continue
			}
			if ctx.Err() != nil || isClosed(err) || errors.Is(err, exception.ErrNotListeningUDS) {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		mu.Lock()
		active[conn] = struct{}{}
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			t.serveConn(ctx, conn, h)
			mu.Lock()
			delete(active, conn)
			mu.Unlock()
		}()
	}
}

// serveConn reads request frames from one peer. Each request is handled on
// its own goroutine so a handler that waits on the same peer does not stall
// the peer's later requests. Replies carry the request id, so they may be
// written in any order.
func (t *Transport) serveConn(ctx context.Context, conn *net.UnixConn, h Handler) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	var (
		wg  sync.WaitGroup
		wmu sync.Mutex
		out []byte
	)
	defer wg.Wait()

	respond := func(req frame, value int64) {
		wmu.Lock()
		defer wmu.Unlock()

		var err error
		out, err = encodeFrame(out[:0], frame{
			ID:     req.ID,
			Kind:   kindReply,
			Type:   req.Type,
			Value:  value,
			Source: t.Identity(),
			Dest:   req.Source,
		}, t.cfg.MaxFrameSize)
		if err != nil {
			logs.Errorf("encode reply frame, err: %+v", err)
			return
		}
		if _, err := conn.Write(out); err != nil && ctx.Err() == nil && !isClosed(err) {
			logs.Errorf("write reply to %s, err: %+v", req.Source, err)
		}
	}

	r := bufio.NewReader(conn)
	for {
		req, err := readFrame(r, t.cfg.MaxFrameSize)
		if err != nil {
			if ctx.Err() == nil && !isClosed(err) {
				t.cfg.Metrics.IncMalformed()
				logs.Errorf("read request frame, err: %+v", err)
			}
			return
		}
		t.cfg.Metrics.ObserveInbound(req.Type)
		if req.Kind != kindRequest {
			logs.Errorf("unexpected frame kind %d from %s", req.Kind, req.Source)
			continue
		}

		wg.Add(1)
		go func(req frame) {
			defer wg.Done()
			value := h(ctx, wire.Envelope{
				Type:    req.Type,
				Payload: req.Payload,
				Source:  req.Source,
				Dest:    req.Dest,
			})
			respond(req, value)
		}(req)
	}
}

// Close stops listening and closes every outbound connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	server := t.server
	t.server = nil
	conns := t.conns
	t.conns = make(map[string]*peerConn)
	t.mu.Unlock()

	for _, pc := range conns {
		pc.close(exception.ErrConnectionClose)
	}
	if server != nil {
		return server.Close()
	}
	return nil
}
