package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cinject.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
snippet: "  TRACE([[.Name]]);\n"
delims: ["[[", "]]"]
include_paths: [include, third_party/include]
skip: [generated]
follow_includes: true
jobs: 4
backup: true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "  TRACE([[.Name]]);\n", cfg.Snippet)
	assert.Equal(t, []string{"[[", "]]"}, cfg.Delims)
	assert.Equal(t, []string{"include", "third_party/include"}, cfg.IncludePaths)
	assert.Equal(t, []string{"generated"}, cfg.Skip)
	assert.True(t, cfg.FollowIncludes)
	assert.Equal(t, 4, cfg.Jobs)
	assert.True(t, cfg.Backup)
	assert.False(t, cfg.Strict)
	// keys absent from the file keep their defaults
	assert.Equal(t, DefaultConfig().Extensions, cfg.Extensions)
}

func TestLoadConfig_ExplicitMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("jobs: [1\n"), 0o644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	delims := filepath.Join(dir, "delims.yaml")
	require.NoError(t, os.WriteFile(delims, []byte("delims: ['<<']\n"), 0o644))
	_, err = LoadConfig(delims)
	assert.ErrorContains(t, err, "delims")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".cinject.yaml")
	cfg := DefaultConfig()
	cfg.Skip = []string{"build/"}
	cfg.Jobs = 2

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
