package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/rivulet/pkg/trace"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "rivulet.deltas", cfg.Topic)
	require.Equal(t, "file", cfg.Trace.Backend)
	require.Equal(t, trace.DefaultCapacity, cfg.Trace.Capacity)
	require.False(t, cfg.Redis.Enabled)
}

func TestLoad_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
trace:
  backend: sqlite
redis:
  enabled: true
  addr: redis:6379
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Trace.Backend)
	require.Equal(t, trace.DefaultCapacity, cfg.Trace.Capacity)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, "rivulet.deltas", cfg.Topic)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topic: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestFlagStore_Selection(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Trace.Backend = "file"
	cfg.Trace.Path = filepath.Join(dir, "trace.flag")
	s, err := cfg.FlagStore()
	require.NoError(t, err)
	require.IsType(t, &trace.FileFlagStore{}, s)

	cfg.Trace.Backend = "sqlite"
	cfg.Trace.Path = filepath.Join(dir, "rivulet.db")
	s, err = cfg.FlagStore()
	require.NoError(t, err)
	require.IsType(t, &trace.SQLiteFlagStore{}, s)

	cfg.Trace.Backend = "bogus"
	_, err = cfg.FlagStore()
	require.Error(t, err)
}
