package transport

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/google/uuid"

	"tradelink/internal/errors"
	"tradelink/internal/wire"
	"tradelink/pkg/exception"
)

type frameKind uint8

const (
	kindRequest frameKind = 1
	kindReply   frameKind = 2
)

const (
	lengthPrefixSize = 4
	// id(16) kind(1) type(2) value(8) srcLen(2) dstLen(2)
	frameFixedSize = 31

	DefaultMaxFrameSize = 64 << 10
)

// frame is the unit written on a connection:
//
//	u32 length | [16]id | u8 kind | u16 type | i64 value |
//	u16 srcLen | src | u16 dstLen | dst | payload
//
// All integers are little endian; length counts the bytes after itself.
type frame struct {
	ID      uuid.UUID
	Kind    frameKind
	Type    wire.MessageType
	Value   int64
	Source  string
	Dest    string
	Payload string
}

func (f frame) size() int {
	return frameFixedSize + len(f.Source) + len(f.Dest) + len(f.Payload)
}

// encodeFrame appends the length-prefixed frame to dst.
func encodeFrame(dst []byte, f frame, maxSize int) ([]byte, error) {
	if len(f.Source) > math.MaxUint16 || len(f.Dest) > math.MaxUint16 {
		return dst, exception.ErrFrameTooLarge
	}
	n := f.size()
	if maxSize > 0 && n > maxSize {
		return dst, errors.Wrapf(exception.ErrFrameTooLarge, "%d bytes", n)
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(n))
	dst = append(dst, f.ID[:]...)
	dst = append(dst, byte(f.Kind))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(f.Type))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(f.Value))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(f.Source)))
	dst = append(dst, f.Source...)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(f.Dest)))
	dst = append(dst, f.Dest...)
	dst = append(dst, f.Payload...)
	return dst, nil
}

// readFrame reads one length-prefixed frame.
func readFrame(r *bufio.Reader, maxSize int) (frame, error) {
	var prefix [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return frame{}, err
	}
	n := int(binary.LittleEndian.Uint32(prefix[:]))
	if n < frameFixedSize {
		return frame{}, errors.Wrapf(exception.ErrMalformedFrame, "length %d", n)
	}
	if maxSize > 0 && n > maxSize {
		return frame{}, errors.Wrapf(exception.ErrFrameTooLarge, "%d bytes", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return frame{}, err
	}
	return decodeFrame(buf)
}

func decodeFrame(buf []byte) (frame, error) {
	var f frame
	copy(f.ID[:], buf[0:16])
	f.Kind = frameKind(buf[16])
	f.Type = wire.MessageType(binary.LittleEndian.Uint16(buf[17:19]))
	f.Value = int64(binary.LittleEndian.Uint64(buf[19:27]))

	rest := buf[27:]
	src, rest, ok := cutString(rest)
	if !ok {
		return frame{}, errors.Wrap(exception.ErrMalformedFrame, "source")
	}
	dst, rest, ok := cutString(rest)
	if !ok {
		return frame{}, errors.Wrap(exception.ErrMalformedFrame, "dest")
	}
	f.Source = src
	f.Dest = dst
	f.Payload = string(rest)

	if f.Kind != kindRequest && f.Kind != kindReply {
		return frame{}, errors.Wrapf(exception.ErrMalformedFrame, "kind %d", f.Kind)
	}
	return f, nil
}

func cutString(b []byte) (string, []byte, bool) {
	if len(b) < 2 {
		return "", nil, false
	}
	n := int(binary.LittleEndian.Uint16(b[:2]))
	b = b[2:]
	if len(b) < n {
		return "", nil, false
	}
	return string(b[:n]), b[n:], true
}
