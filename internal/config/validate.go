package config

import (
	"strings"

	"tradelink/internal/errors"
	"tradelink/pkg/exception"
)

const minFrameSize = 256

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Link.Identity == "" {
		return invalid("link.identity is required")
	}
	if !validName(c.Link.Identity) {
		return invalidf("link.identity %q must not contain path separators", c.Link.Identity)
	}
	if c.Link.Peer != "" && !validName(c.Link.Peer) {
		return invalidf("link.peer %q must not contain path separators", c.Link.Peer)
	}
	if c.Link.SocketDir == "" {
		return invalid("link.socket_dir is required")
	}
	if c.Link.RequestTimeout <= 0 {
		return invalid("link.request_timeout must be > 0")
	}
	if c.Link.MaxFrameSize < minFrameSize {
		return invalidf("link.max_frame_size must be >= %d, got %d", minFrameSize, c.Link.MaxFrameSize)
	}
	if c.Link.StaleAfter < 0 {
		return invalid("link.stale_after must be >= 0")
	}
	if c.Link.StaleAfter > 0 && c.Link.PruneInterval <= 0 {
		return invalid("link.prune_interval must be > 0 when stale_after is set")
	}

	if c.Journal.Enabled {
		pg := c.Journal.Postgres
		if pg.ConnString == "" && pg.Host == "" {
			return invalid("journal.postgres.host is required")
		}
		if pg.Port < 0 || pg.Port > 65535 {
			return invalidf("journal.postgres.port must be between 0 and 65535, got %d", pg.Port)
		}
		if c.Journal.QueueSize < 1 {
			return invalid("journal.queue_size must be >= 1")
		}
	}

	if c.Profile.Enabled && c.Profile.Server == "" {
		return invalid("profile.server is required")
	}

	if c.StatsInterval < 0 {
		return invalid("stats_interval must be >= 0")
	}
	return nil
}

func validName(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, "/\\\x00")
}

func invalid(msg string) error {
	return errors.Wrap(exception.ErrInvalidConfig, msg)
}

func invalidf(format string, args ...any) error {
	return errors.Wrapf(exception.ErrInvalidConfig, format, args...)
}
