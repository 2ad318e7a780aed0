package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, "zstd", cfg.Output.Compressor)
	require.True(t, cfg.Divide.HideSource)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zarrdivide.yaml")
	doc := `
divide:
  includeBoundaries: true
output:
  compressor: gzip
logging:
  verbose: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.True(t, cfg.Divide.IncludeBoundaries)
	require.True(t, cfg.Divide.HideSource, "unset keys keep defaults")
	require.Equal(t, "gzip", cfg.Output.Compressor)
	require.True(t, cfg.Output.SkipEmptyChunks)
	require.True(t, cfg.Logging.Verbose)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("divide: [unclosed"), 0644))
	_, err := LoadConfig(bad)
	require.ErrorContains(t, err, "error parsing config file")

	blosc := filepath.Join(dir, "blosc.yaml")
	require.NoError(t, os.WriteFile(blosc, []byte("output:\n  compressor: blosc\n"), 0644))
	_, err = LoadConfig(blosc)
	require.ErrorContains(t, err, "output.compressor")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "zarrdivide.yaml")
	cfg := DefaultConfig()
	cfg.Output.Compressor = "none"
	cfg.Output.BatchFrames = 4
	cfg.Logging.Trace = true

	require.NoError(t, SaveConfig(cfg, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadConfig_NegativeBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zarrdivide.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  batchFrames: -1\n"), 0644))
	_, err := LoadConfig(path)
	require.ErrorContains(t, err, "output.batchFrames")
}
