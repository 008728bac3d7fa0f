package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultRequestTimeout = 5 * time.Second
	DefaultDialTimeout    = time.Second
	DefaultMaxFrameSize   = 64 << 10
	DefaultPruneInterval  = 30 * time.Second
	DefaultQueueSize      = 1024
	DefaultStatsInterval  = time.Minute
	DefaultProfileServer  = "http://localhost:4040"
	DefaultAppName        = "tradelink"
)

// DefaultSocketDir is where peers listen when socket_dir is not set.
func DefaultSocketDir() string {
	return filepath.Join(os.TempDir(), "tradelink")
}

func (c *Config) applyDefaults() {
	if c.Link.SocketDir == "" {
		c.Link.SocketDir = DefaultSocketDir()
	}
	if c.Link.RequestTimeout == 0 {
		c.Link.RequestTimeout = DefaultRequestTimeout
	}
	if c.Link.DialTimeout == 0 {
		c.Link.DialTimeout = DefaultDialTimeout
	}
	if c.Link.MaxFrameSize == 0 {
		c.Link.MaxFrameSize = DefaultMaxFrameSize
	}
	if c.Link.StaleAfter > 0 && c.Link.PruneInterval == 0 {
		c.Link.PruneInterval = DefaultPruneInterval
	}

	if c.Journal.QueueSize == 0 {
		c.Journal.QueueSize = DefaultQueueSize
	}

	if c.Profile.Server == "" {
		c.Profile.Server = DefaultProfileServer
	}
	if c.Profile.AppName == "" {
		c.Profile.AppName = DefaultAppName
	}

	if c.StatsInterval == 0 {
		c.StatsInterval = DefaultStatsInterval
	}
}
