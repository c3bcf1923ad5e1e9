package storeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "./pmmrdata", cfg.DataDir)
	require.Equal(t, 8, cfg.SumWidth)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /var/lib/pmmr\nsum_width: 16\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/pmmr", cfg.DataDir)
	require.Equal(t, 16, cfg.SumWidth)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /var/lib/pmmr\n"), 0644))

	t.Setenv("PMMRSTORE_DATA_DIR", "/override")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/override", cfg.DataDir)
}
