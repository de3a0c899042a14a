package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	t.Setenv(InputDirEnv, "")
	path := filepath.Join(t.TempDir(), "configs", "config.toml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "data/input", cfg.Scan.InputDirectory)
	assert.Equal(t, "v", cfg.Format.Profile)
	assert.Equal(t, 2, cfg.Format.PruneThreshold)

	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestLoadConfigFillsDefaults(t *testing.T) {
	t.Setenv(InputDirEnv, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[scan]
input_directory = "measurements"

[format]
profile = "u"
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "measurements", cfg.Scan.InputDirectory)
	assert.Equal(t, "data/output", cfg.Scan.OutputDirectory)
	assert.Equal(t, "u", cfg.Format.Profile)
	assert.Equal(t, 2, cfg.Format.PruneThreshold)
	assert.Empty(t, cfg.Format.ProfileFile)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv(InputDirEnv, "/srv/vibro")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scan]\ninput_directory = \"measurements\"\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/vibro", cfg.Scan.InputDirectory)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scan\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
