package transport

import (
	"path/filepath"
	"strings"

	"tradelink/internal/errors"
	"tradelink/pkg/exception"
	"tradelink/pkg/uds"
)

const socketSuffix = ".sock"

// Directory maps peer names to socket paths.
type Directory struct {
	dir string
}

// NewDirectory creates a directory rooted at dir.
func NewDirectory(dir string) Directory {
	return Directory{dir: dir}
}

// Dir returns the root directory.
func (d Directory) Dir() string {
	return d.dir
}

// Path returns the socket path for name without checking that it exists.
func (d Directory) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(d.dir, name+socketSuffix), nil
}

// Resolve returns the socket path of a listening peer.
func (d Directory) Resolve(name string) (string, error) {
	path, err := d.Path(name)
	if err != nil {
		return "", err
	}
	if !uds.IsSocket(path) {
		return "", errors.Wrapf(exception.ErrPeerNotFound, "resolve %s", name)
	}
	return path, nil
}

// Found reports whether name resolves to a socket.
func (d Directory) Found(name string) bool {
	_, err := d.Resolve(name)
	return err == nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\\x00") {
		return errors.Wrapf(exception.ErrInvalidPeerName, "%q", name)
	}
	return nil
}
