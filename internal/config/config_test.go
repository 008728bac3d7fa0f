package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/pkg/exception"
)

func TestLoad(t *testing.T) {
	yaml := `
link:
  identity: TL-BROKER-SIMU
  socket_dir: /tmp/tl
  request_timeout: 2s
  stale_after: 1m
journal:
  enabled: true
  queue_size: 64
  postgres:
    host: db
    port: 6543
    name: journal
    user: trader
profile:
  enabled: true
  server: http://pyroscope:4040
stats_interval: 10s
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "TL-BROKER-SIMU", cfg.Link.Identity)
	assert.Equal(t, "/tmp/tl", cfg.Link.SocketDir)
	assert.Equal(t, 2*time.Second, cfg.Link.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.Link.StaleAfter)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, 64, cfg.Journal.QueueSize)
	assert.Equal(t, "db", cfg.Journal.Postgres.Host)
	assert.Equal(t, 6543, cfg.Journal.Postgres.Port)
	assert.Equal(t, "journal", cfg.Journal.Postgres.Database)
	assert.Equal(t, "http://pyroscope:4040", cfg.Profile.Server)
	assert.Equal(t, 10*time.Second, cfg.StatsInterval)
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TL_DB_PASSWORD", "secret123")
	t.Setenv("TL_IDENTITY", "watcher-1")

	yaml := `
link:
  identity: ${TL_IDENTITY}
journal:
  postgres:
    password: ${TL_DB_PASSWORD}
`
	cfg, err := Load(writeTempFile(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, "watcher-1", cfg.Link.Identity)
	assert.Equal(t, "secret123", cfg.Journal.Postgres.Password)
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(writeTempFile(t, "link:\n  identity: a\n  stale_after: 1m\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultSocketDir(), cfg.Link.SocketDir)
	assert.Equal(t, DefaultRequestTimeout, cfg.Link.RequestTimeout)
	assert.Equal(t, DefaultDialTimeout, cfg.Link.DialTimeout)
	assert.Equal(t, DefaultMaxFrameSize, cfg.Link.MaxFrameSize)
	assert.Equal(t, DefaultPruneInterval, cfg.Link.PruneInterval)
	assert.Equal(t, DefaultQueueSize, cfg.Journal.QueueSize)
	assert.Equal(t, DefaultAppName, cfg.Profile.AppName)
	assert.Equal(t, DefaultStatsInterval, cfg.StatsInterval)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeTempFile(t, "link: [unclosed"))
	require.Error(t, err)

	_, err = LoadAndValidate(writeTempFile(t, "link:\n  peer: x\n"))
	require.ErrorIs(t, err, exception.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Link.Identity = "watcher"
		return *cfg
	}

	testCases := []struct {
		desc    string
		mutate  func(*Config)
		wantErr string
	}{
		{desc: "valid", mutate: func(*Config) {}},
		{desc: "missing identity", mutate: func(c *Config) { c.Link.Identity = "" }, wantErr: "link.identity is required"},
		{desc: "identity with separator", mutate: func(c *Config) { c.Link.Identity = "a/b" }, wantErr: "link.identity"},
		{desc: "peer with separator", mutate: func(c *Config) { c.Link.Peer = ".." }, wantErr: "link.peer"},
		{desc: "no socket dir", mutate: func(c *Config) { c.Link.SocketDir = "" }, wantErr: "link.socket_dir is required"},
		{desc: "no timeout", mutate: func(c *Config) { c.Link.RequestTimeout = -1 }, wantErr: "link.request_timeout"},
		{desc: "tiny frames", mutate: func(c *Config) { c.Link.MaxFrameSize = 16 }, wantErr: "link.max_frame_size must be >= 256, got 16"},
		{desc: "negative stale", mutate: func(c *Config) { c.Link.StaleAfter = -time.Second }, wantErr: "link.stale_after"},
		{
			desc:    "stale without interval",
			mutate:  func(c *Config) { c.Link.StaleAfter = time.Minute },
			wantErr: "link.prune_interval",
		},
		{
			desc:    "journal without host",
			mutate:  func(c *Config) { c.Journal.Enabled = true },
			wantErr: "journal.postgres.host is required",
		},
		{
			desc: "journal with conn string",
			mutate: func(c *Config) {
				c.Journal.Enabled = true
				c.Journal.Postgres.ConnString = "host=db"
			},
		},
		{
			desc: "journal bad port",
			mutate: func(c *Config) {
				c.Journal.Enabled = true
				c.Journal.Postgres.Host = "db"
				c.Journal.Postgres.Port = 70000
			},
			wantErr: "journal.postgres.port",
		},
		{
			desc:    "profile without server",
			mutate:  func(c *Config) { c.Profile = ProfileConfig{Enabled: true} },
			wantErr: "profile.server is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, exception.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
