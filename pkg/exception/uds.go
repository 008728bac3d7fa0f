package exception

import "errors"

// UDS errors
var (
	// ErrEmptyPathUDS is returned when a socket path is empty.
	ErrEmptyPathUDS = errors.New("uds: empty path")

	// ErrNilClientUDS is returned when a nil client receiver is used.
	ErrNilClientUDS = errors.New("uds: nil client")

	// ErrNilServerUDS is returned when a nil server receiver is used.
	ErrNilServerUDS = errors.New("uds: nil server")

	// ErrAlreadyListeningUDS is returned when Listen is called twice.
	ErrAlreadyListeningUDS = errors.New("uds: already listening")

	// ErrNotListeningUDS is returned when Accept is called before Listen.
	ErrNotListeningUDS = errors.New("uds: not listening")

	// ErrPathNotSocketUDS is returned when the existing path is not a socket.
	ErrPathNotSocketUDS = errors.New("uds: path exists and is not a socket")
)
