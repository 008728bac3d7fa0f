package uds

import (
	"net"
	"os"
	"sync"

	"tradelink/pkg/exception"
)

// Server listens for Unix domain socket connections.
type Server struct {
	addr net.UnixAddr

	mu sync.Mutex
	ln *net.UnixListener
}

// NewServer creates a server for the provided socket path.
func NewServer(path string) (*Server, error) {
	if path == "" {
		return nil, exception.ErrEmptyPathUDS
	}
	return &Server{addr: net.UnixAddr{Name: path, Net: unixNetwork}}, nil
}

// Path returns the configured socket path.
func (s *Server) Path() string {
	if s == nil {
		return ""
	}
	return s.addr.Name
}

// Listen starts listening on the configured socket path.
// It removes an existing socket file when present, so a peer that crashed
// without unlinking does not block its successor.
func (s *Server) Listen() error {
	if s == nil {
		return exception.ErrNilServerUDS
	}
	if s.addr.Name == "" {
		return exception.ErrEmptyPathUDS
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return exception.ErrAlreadyListeningUDS
	}
	if err := RemoveIfExists(s.addr.Name); err != nil {
		return err
	}
	ln, err := net.ListenUnix(unixNetwork, &s.addr)
	if err != nil {
		return err
	}
	ln.SetUnlinkOnClose(true)
	s.ln = ln
	return nil
}

// Accept waits for the next incoming connection.
func (s *Server) Accept() (*net.UnixConn, error) {
	if s == nil {
		return nil, exception.ErrNilServerUDS
	}
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return nil, exception.ErrNotListeningUDS
	}
	return ln.AcceptUnix()
}

// Close stops the listener.
func (s *Server) Close() error {
	if s == nil {
		return exception.ErrNilServerUDS
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	s.ln = nil
	return err
}

// RemoveIfExists removes the socket file if it exists.
func RemoveIfExists(path string) error {
	if path == "" {
		return exception.ErrEmptyPathUDS
	}
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSocket == 0 {
		return exception.ErrPathNotSocketUDS
	}
	return os.Remove(path)
}
