package exception

import "github.com/yanun0323/errors"

// Link errors
var (
	// ErrPeerNotFound is returned when a destination peer name cannot be resolved.
	ErrPeerNotFound = errors.New("link: peer not found")

	// ErrNoLocalIdentity is returned when sending before the local identity is set.
	ErrNoLocalIdentity = errors.New("link: local identity not configured")

	ErrNilTransport = errors.New("link: nil transport")
)

// Wire errors
var (
	ErrMalformedRecord  = errors.New("wire: malformed record")
	ErrPriceOutOfRange  = errors.New("wire: price out of packable range")
	ErrMalformedPayload = errors.New("wire: malformed subscription payload")
)

// Journal errors
var (
	ErrJournalQueueFull = errors.New("journal: queue full")
	ErrJournalClosed    = errors.New("journal: closed")
)
