package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: https://api.mkfrx.example\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.mkfrx.example", cfg.BackendURL)
	assert.Equal(t, "127.0.0.1:8742", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.ChartPollInterval)
	assert.Equal(t, "btcinr", cfg.ChartSymbol)
	assert.Equal(t, ".mkfrx/session.json", cfg.SessionFile)
	assert.Equal(t, "./wal/intents", cfg.JournalDir)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `backend_url: https://api.mkfrx.example
listen_addr: 127.0.0.1:9000
poll_interval: 30s
chart_poll_interval: 2s
chart_symbol: ethinr
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.ChartPollInterval)
	assert.Equal(t, "ethinr", cfg.ChartSymbol)
}

func TestLoadRejectsMissingBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: 127.0.0.1:9000\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend_url is required")
}

func TestLoadRejectsMalformedBackendURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: \"not a url\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.gen.yaml")
	cfg := Config{
		BackendURL:        "https://api.mkfrx.example",
		ListenAddr:        "127.0.0.1:8888",
		PollInterval:      15 * time.Second,
		ChartPollInterval: 5 * time.Second,
		ChartSymbol:       "solinr",
		SessionFile:       ".mkfrx/session.json",
		JournalDir:        "./wal/intents",
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
