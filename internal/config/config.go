// Package config loads the YAML configuration shared by the broker and
// watch commands.
package config

import (
	"time"

	"tradelink/pkg/conn"
)

// Config is the root configuration of a link process.
type Config struct {
	Link          LinkConfig    `yaml:"link"`
	Journal       JournalConfig `yaml:"journal"`
	Profile       ProfileConfig `yaml:"profile"`
	StatsInterval time.Duration `yaml:"stats_interval"`
}

// LinkConfig describes the local endpoint and the peer it talks to.
type LinkConfig struct {
	Identity       string        `yaml:"identity"`
	Peer           string        `yaml:"peer"`
	SocketDir      string        `yaml:"socket_dir"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	MaxFrameSize   int           `yaml:"max_frame_size"`
	// StaleAfter enables pruning of peers without a heartbeat for this
	// long. Zero keeps every peer until it unregisters.
	StaleAfter    time.Duration `yaml:"stale_after"`
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// JournalConfig enables the Postgres audit journal.
type JournalConfig struct {
	Enabled   bool        `yaml:"enabled"`
	QueueSize int         `yaml:"queue_size"`
	Postgres  conn.Option `yaml:"postgres"`
}

// ProfileConfig enables continuous profiling.
type ProfileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Server  string `yaml:"server"`
	AppName string `yaml:"app_name"`
}
