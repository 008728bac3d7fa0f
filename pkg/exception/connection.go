package exception

import "github.com/yanun0323/errors"

// Transport errors
var (
	ErrConnectionClose = errors.New("transport: connection closed")
	ErrFrameTooLarge   = errors.New("transport: frame exceeds max size")
	ErrMalformedFrame  = errors.New("transport: malformed frame")
	ErrRequestTimeout  = errors.New("transport: request timeout")
	ErrInvalidPeerName = errors.New("transport: invalid peer name")
)
