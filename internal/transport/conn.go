package transport

import (
	"bufio"
	stderrors "errors"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"tradelink/pkg/exception"
)

type reply struct {
	value int64
	err   error
}

// peerConn is one outbound connection with its in-flight requests.
type peerConn struct {
	conn     *net.UnixConn
	maxFrame int

	wmu sync.Mutex
	buf []byte

	mu      sync.Mutex
	pending map[uuid.UUID]chan reply
	err     error
}

func newPeerConn(conn *net.UnixConn, maxFrame int) *peerConn {
	return &peerConn{
		conn:     conn,
		maxFrame: maxFrame,
		pending:  make(map[uuid.UUID]chan reply),
	}
}

// await registers id and returns the channel its reply is delivered on.
func (pc *peerConn) await(id uuid.UUID) (<-chan reply, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.err != nil {
		return nil, pc.err
	}
	ch := make(chan reply, 1)
	pc.pending[id] = ch
	return ch, nil
}

func (pc *peerConn) forget(id uuid.UUID) {
	pc.mu.Lock()
	delete(pc.pending, id)
	pc.mu.Unlock()
}

func (pc *peerConn) write(f frame) error {
	pc.wmu.Lock()
	defer pc.wmu.Unlock()

	out, err := encodeFrame(pc.buf[:0], f, pc.maxFrame)
	if err != nil {
		return err
	}
	pc.buf = out
	if _, err := pc.conn.Write(out); err != nil {
		pc.close(exception.ErrConnectionClose)
		return exception.ErrConnectionClose
	}
	return nil
}

// readReplies routes reply frames to their waiters until the connection
// fails, then fails everything still pending.
func (pc *peerConn) readReplies() error {
	r := bufio.NewReader(pc.conn)
	for {
		f, err := readFrame(r, pc.maxFrame)
		if err != nil {
			pc.close(exception.ErrConnectionClose)
			if isClosed(err) {
				return nil
			}
			return err
		}
		if f.Kind != kindReply {
			logs.Errorf("unexpected frame kind %d on outbound connection", f.Kind)
			continue
		}

		pc.mu.Lock()
		ch, ok := pc.pending[f.ID]
		delete(pc.pending, f.ID)
		pc.mu.Unlock()
		if ok {
			ch <- reply{value: f.Value}
		}
	}
}

func (pc *peerConn) close(cause error) {
	pc.mu.Lock()
	if pc.err != nil {
		pc.mu.Unlock()
		return
	}
	pc.err = cause
	pending := pc.pending
	pc.pending = make(map[uuid.UUID]chan reply)
	pc.mu.Unlock()

	_ = pc.conn.Close()
	for _, ch := range pending {
		ch <- reply{err: cause}
	}
}

func isClosed(err error) bool {
	return stderrors.Is(err, io.EOF) || stderrors.Is(err, net.ErrClosed) ||
		stderrors.Is(err, io.ErrUnexpectedEOF)
}
