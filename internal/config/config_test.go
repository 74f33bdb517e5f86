package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "shopadmin", cfg.Name)
	assert.Equal(t, 30*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, 24*time.Hour, cfg.GetSessionTTL())
	assert.Equal(t, 250*time.Millisecond, cfg.GetSearchDebounce())
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Store.DatabasePath = "/tmp/x.db"
	cfg.Store.RequestTimeout = "5s"
	cfg.Logging.Debug = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", loaded.Store.DatabasePath)
	assert.Equal(t, 5*time.Second, loaded.GetRequestTimeout())
	assert.True(t, loaded.Logging.Debug)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHOPADMIN_DB", "/elsewhere/store.db")
	t.Setenv("SHOPADMIN_DEBUG", "1")
	t.Setenv("SHOPADMIN_TOKEN_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/store.db", cfg.Store.DatabasePath)
	assert.True(t, cfg.Logging.Debug)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "s3cret", cfg.Auth.TokenSecret)
}

func TestMalformedConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [not a map"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestBadDurationsFallBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.RequestTimeout = "garbage"
	cfg.Auth.SessionTTL = "-1h"
	assert.Equal(t, 30*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, 24*time.Hour, cfg.GetSessionTTL())
}
